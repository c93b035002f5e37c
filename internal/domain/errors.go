package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors mapped to UI failure classes.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnreachable  = errors.New("backend unreachable")
	ErrUnauthorized = errors.New("session expired")
	ErrInvalidEnum  = errors.New("invalid value")
	ErrNoData       = errors.New("no data to export")
)

// APIError is a non-2xx response from the vault API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vault api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

// FailureClass is the bucket a read failure is rendered under.
type FailureClass string

const (
	FailureNotFound     FailureClass = "not_found"
	FailureUnreachable  FailureClass = "unreachable"
	FailureUnauthorized FailureClass = "unauthorized"
	FailureGeneric      FailureClass = "generic"
)

// Classify buckets err into one of the fixed failure classes.
func Classify(err error) FailureClass {
	switch {
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrUnreachable):
		return FailureUnreachable
	case errors.Is(err, ErrUnauthorized):
		return FailureUnauthorized
	default:
		return FailureGeneric
	}
}

// UserMessage prefers the server's own message text when there is one.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
