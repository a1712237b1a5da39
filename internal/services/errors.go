// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/lifecycle"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = lifecycle.ErrInvalidInput
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	ErrConflict          = lifecycle.ErrConflict
)

// NotFoundError names the missing resource so handlers can localise the
// message. It matches ErrNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func validationFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// lookupError turns a missing row into a NotFoundError and anything else into
// a wrapped database error.
func lookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource)
	}
	return fmt.Errorf("database error: %w", err)
}
