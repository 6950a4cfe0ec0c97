package devserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/internal/utils"
	"github.com/martory/go-tenant-session/stores"
)

const defaultStoreStatus = "active"

func (s *Server) GetAllStoresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.repos.Stores.List(0, 0)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		list := make([]stores.Store, 0, len(all))
		for _, st := range all {
			list = append(list, *st)
		}
		writeJSON(w, http.StatusOK, map[string]any{"stores": list})
	}
}

func (s *Server) CreateStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var store stores.Store
		if err := decodeJSON(r, &store); err != nil {
			writeDomainError(w, err)
			return
		}
		store.Subdomain = strings.TrimSpace(store.Subdomain)
		if err := s.validator.ValidateStore(store); err != nil {
			writeDomainError(w, err)
			return
		}
		store.ID = 0
		store.UserID = claimsFrom(r.Context()).UserID()
		if utils.Value(store.Status) == "" {
			store.Status = utils.Ptr(defaultStoreStatus)
		}
		if err := s.repos.Stores.Create(&store); err != nil {
			writeDomainError(w, err)
			return
		}
		s.logger.Info().Int64("store_id", store.ID).Str("subdomain", store.Subdomain).Msg("store created")
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Store created", "store": store})
	}
}

func (s *Server) UpdateStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		existing, ok := s.ownedStoreFromPath(w, r)
		if !ok {
			return
		}
		var update stores.Store
		if err := decodeJSON(r, &update); err != nil {
			writeDomainError(w, err)
			return
		}
		update.ID = existing.ID
		update.UserID = existing.UserID
		if update.Subdomain == "" {
			update.Subdomain = existing.Subdomain
		}
		if update.Status == nil {
			update.Status = existing.Status
		}
		if err := s.validator.ValidateStore(update); err != nil {
			writeDomainError(w, err)
			return
		}
		if err := s.repos.Stores.Update(&update); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Store updated", "store": update})
	}
}

func (s *Server) DeleteStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		existing, ok := s.ownedStoreFromPath(w, r)
		if !ok {
			return
		}
		if err := s.repos.Stores.Delete(existing.ID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Store deleted"})
	}
}

// ownedStoreFromPath loads {id} and checks the caller owns it. It writes the error
// response itself and reports false on failure.
func (s *Server) ownedStoreFromPath(w http.ResponseWriter, r *http.Request) (*stores.Store, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeDomainError(w, errors.ErrInvalidRequest)
		return nil, false
	}
	store, err := s.repos.Stores.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	if !s.canAccess(claimsFrom(r.Context()), store) {
		writeDomainError(w, errors.ErrStoreNotAccessible)
		return nil, false
	}
	return store, true
}
