package service

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap one of these with fmt.Errorf("%w: ...").
var (
	ErrNotFound            = errors.New("not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrConflict            = errors.New("conflict")
	ErrValidation          = errors.New("validation error")
	ErrStorage             = errors.New("storage failure")
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

// ConflictError reports a refused operation together with what blocked it.
type ConflictError struct {
	Message string
	Details any
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// RangeError carries the blob length so the caller can answer with "bytes */N".
type RangeError struct {
	Size int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range not satisfiable for %d bytes", e.Size)
}

func (e *RangeError) Unwrap() error { return ErrRangeNotSatisfiable }

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
