package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

type HandlerFunc func(http.ResponseWriter, *http.Request) error

type APIError struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Status int    `json:"status"`
}

// Error is an error that knows its HTTP status.
type Error struct {
	Status int
	Reason string
	Err    error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func BadRequest(err error, reason string) error {
	return &Error{Status: http.StatusBadRequest, Reason: reason, Err: err}
}

func Internal(err error, reason string) error {
	return &Error{Status: http.StatusInternalServerError, Reason: reason, Err: err}
}

var ErrUnauthorized = errors.New("unauthorized")

func WriteJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, err error, reason string) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	WriteJSON(w, APIError{Error: err.Error(), Reason: reason, Status: status}, status)
}

// Wrap adapts an error-returning handler. *Error values choose the status,
// ErrUnauthorized maps to 401 and anything else is a 500.
func Wrap(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		code, reason := http.StatusInternalServerError, ""
		var he *Error
		switch {
		case errors.As(err, &he):
			code, reason = he.Status, he.Reason
		case errors.Is(err, ErrUnauthorized):
			code = http.StatusUnauthorized
		}
		if code >= http.StatusInternalServerError {
			LogError(r, err)
		}
		WriteError(w, code, err, reason)
	})
}

// Decode reads a JSON body into T. Decode failures are 400s.
func Decode[T any](r *http.Request) (T, error) {
	var t T
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		return t, BadRequest(err, "bad_json")
	}
	return t, nil
}
