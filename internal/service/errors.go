package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds surfaced by every service. Callers match them with errors.Is;
// the message carries the context.
var (
	ErrNotFound          = errors.New("not found")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateSlug     = errors.New("duplicate slug")
	ErrCircularReference = errors.New("circular category reference")
	ErrMaxDepthExceeded  = errors.New("maximum category depth exceeded")
	ErrHasChildren       = errors.New("category has children")
	ErrInUse             = errors.New("resource is in use")
)

// notFound translates gorm's ErrRecordNotFound into ErrNotFound and wraps
// everything else unchanged.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
