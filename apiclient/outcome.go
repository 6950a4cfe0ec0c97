package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// OutcomeKind tags the result of one backend call
type OutcomeKind int

const (
	// OutcomeSuccess is a 2xx response
	OutcomeSuccess OutcomeKind = iota
	// OutcomeUnreachable is a transport failure: nothing answered
	OutcomeUnreachable
	// OutcomeRejected is a non-2xx response from a backend that did answer
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeRejected:
		return "rejected"
	}
	return "unknown"
}

// Outcome is the classified result of Client.Do
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Body       []byte
	// Message is the server supplied error text for rejected calls
	Message string
	// Err is the transport error for unreachable calls
	Err error
}

// Decode unmarshals the response body into out. An empty body leaves out untouched.
func (o Outcome) Decode(out any) error {
	if len(o.Body) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(o.Body, out); err != nil {
		return errors.Wrap(err, "[Outcome.Decode]")
	}
	return nil
}

// AsError returns nil for a success and an *Error otherwise
func (o Outcome) AsError() error {
	if o.Kind == OutcomeSuccess {
		return nil
	}
	return &Error{Kind: o.Kind, StatusCode: o.StatusCode, Message: o.Message, Cause: o.Err}
}

// Error is returned by the typed endpoint wrappers for failed calls
type Error struct {
	Kind       OutcomeKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Kind == OutcomeUnreachable {
		return fmt.Sprintf("backend unreachable: %v", e.Cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsUnreachable reports whether err is a transport level failure
func IsUnreachable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == OutcomeUnreachable
}

// IsRejected reports whether err is a non-2xx response
func IsRejected(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == OutcomeRejected
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// serverMessage pulls a human readable message out of an error body.
// Backends answer with {"message": ...} or {"error": ...}.
func serverMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}
