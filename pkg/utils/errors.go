package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures so handlers can map them to an
// HTTP status without inspecting error message strings.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInvalidCredential ErrorKind = "invalid_credential"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindConflict          ErrorKind = "conflict"
	KindConfiguration     ErrorKind = "configuration"
	KindTransport         ErrorKind = "transport"
	KindInternal          ErrorKind = "internal"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func WrapAppError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Anything untyped is internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of an error. Untyped errors
// never leak their text to the response body.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
