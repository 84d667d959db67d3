package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized means the backend rejected the bearer token. Callers
	// treat it as a full logout.
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	// ErrInvalidCredentials is a 401 from a login endpoint. It does not end
	// any session.
	ErrInvalidCredentials = errors.New("apiclient: invalid username or password")
	ErrNotAdmin           = errors.New("apiclient: account is not an administrator")
	ErrNotFound           = errors.New("apiclient: not found")
)

// APIError is any non-2xx response from the lending API.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *APIError) Unwrap() error { return e.kind }

func newAPIError(method, path string, status int, message string, login bool) *APIError {
	e := &APIError{Method: method, Path: path, Status: status, Message: message}
	switch {
	case status == http.StatusUnauthorized && login:
		e.kind = ErrInvalidCredentials
	case status == http.StatusUnauthorized:
		e.kind = ErrUnauthorized
	case status == http.StatusNotFound:
		e.kind = ErrNotFound
	}
	return e
}
