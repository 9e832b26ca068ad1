package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no user matches the requested id.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when a user id is already registered.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrConfigUnavailable marks a config store that could not be reached
	// or returned a malformed document.
	ErrConfigUnavailable = errors.New("config unavailable")
)

// PlatformError is the structured error body the messaging platform returns
// with a non-2xx response.
type PlatformError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode"`
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform error: code=%d subcode=%d message=%s", e.Code, e.Subcode, e.Message)
}
