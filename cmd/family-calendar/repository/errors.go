package repository

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"

	"gorm.io/gorm"
)

// translate maps gorm/driver failures onto the model error taxonomy.
// Cancellation passes through untouched so callers can treat it as a no-op.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", model.ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", model.ErrTransient, err)
	}
}
