package repository

import (
	"errors"
	"fmt"

	"backend/internal/apperr"

	"gorm.io/gorm"
)

// wrapErr normalizes gorm errors to the shared sentinel taxonomy so services
// never depend on gorm error types. Missing rows become ErrNotFound, anything
// else is treated as a transient store failure.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return fmt.Errorf("%s: %w (%v)", op, apperr.ErrStoreUnavailable, err)
}
