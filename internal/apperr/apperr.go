// Package apperr defines the error kinds every service returns. Callers match
// a kind with errors.Is and read the message for the specific reason.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrHasDependents     = errors.New("has dependent records")
	ErrStorage           = errors.New("storage error")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Error pairs a kind with a caller-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

// Is matches the kind so errors.Is(err, ErrNotFound) works on wrapped errors.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// Duplicate reports a unique constraint on field.
func Duplicate(field string) error {
	return newError(ErrDuplicateKey, "%s already exists", field)
}

// NotFound reports a missing entity by name.
func NotFound(entity string) error {
	return newError(ErrNotFound, "%s not found", entity)
}

func Denied(reason string) error {
	return newError(ErrPermissionDenied, "%s", reason)
}

func InsufficientStock(available, requested int) error {
	return newError(ErrInsufficientStock, "insufficient stock: %d available, %d requested", available, requested)
}

func HasDependents(reason string) error {
	return newError(ErrHasDependents, "%s", reason)
}

func Unauthenticated(reason string) error {
	return newError(ErrUnauthenticated, "%s", reason)
}

// Storage wraps a store failure. Errors that already carry a kind pass through.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: ErrStorage, Message: "storage error", Err: err}
}

// KindOf returns the kind carried by err, or ErrStorage for untyped errors.
func KindOf(err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrStorage
}
