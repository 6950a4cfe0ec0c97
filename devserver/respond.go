package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/validation"
)

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeDomainError maps shared sentinel errors onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	var fe validation.FieldErrors
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "validation failed", Errors: fe})
	case errors.Is(err, errors.ErrInvalidCredentials), errors.Is(err, errors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, errors.ErrStoreNotAccessible):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, errors.ErrStoreNotFound), errors.Is(err, errors.ErrProductNotFound),
		errors.Is(err, errors.ErrUserNotFound), errors.Is(err, errors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrUserExists), errors.Is(err, errors.ErrSubdomainTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errors.ErrInvalidRequest), errors.Is(err, errors.ErrInsufficientStock),
		errors.Is(err, errors.ErrNoTenant):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(out); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "decode body: %v", err)
	}
	return nil
}
