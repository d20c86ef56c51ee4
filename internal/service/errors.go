package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/hostel-management/internal/store"
)

// Error kinds returned by the service layer.  Operations wrap them with
// context; callers test with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrCapacityExceeded  = errors.New("room capacity exceeded")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
)

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func validation(format string, args ...any) error { return wrap(ErrValidation, format, args...) }
func notFound(format string, args ...any) error   { return wrap(ErrNotFound, format, args...) }
func conflict(format string, args ...any) error   { return wrap(ErrConflict, format, args...) }
func forbidden(format string, args ...any) error  { return wrap(ErrForbidden, format, args...) }

// lookup translates a store error from fetching what into a service error.
func lookup(err error, what string, id uint64) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound("%s %d", what, id)
	}
	return err
}
