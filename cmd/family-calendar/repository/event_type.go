package repository

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"time"

	"gorm.io/gorm"
)

type EventTypeRepo struct {
	db *gorm.DB
}

func NewEventTypeRepo(db *gorm.DB) *EventTypeRepo {
	return &EventTypeRepo{
		db: db,
	}
}

func (r *EventTypeRepo) ListEventTypes(ctx context.Context, ownerID string) ([]model.EventType, error) {

	var types []model.EventType

	result := r.db.
		WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("name ASC").
		Find(&types)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return types, nil
}

func (r *EventTypeRepo) GetEventType(ctx context.Context, id string) (model.EventType, error) {

	var et model.EventType

	result := r.db.
		WithContext(ctx).
		Where("id = ?", id).
		First(&et)

	if result.Error != nil {
		return model.EventType{}, translate(result.Error)
	}

	return et, nil
}

func (r *EventTypeRepo) FindEventTypeByName(ctx context.Context, ownerID, name string) (model.EventType, error) {

	var et model.EventType

	result := r.db.
		WithContext(ctx).
		Where("user_id = ? AND name = ?", ownerID, name).
		First(&et)

	if result.Error != nil {
		return model.EventType{}, translate(result.Error)
	}

	return et, nil
}

// CreateEventType inserts a type. A (user_id, name) collision surfaces as model.ErrConflict.
func (r *EventTypeRepo) CreateEventType(ctx context.Context, et *model.EventType) error {

	result := r.db.
		WithContext(ctx).
		Create(et)

	return translate(result.Error)
}

func (r *EventTypeRepo) UpdateEventType(ctx context.Context, et *model.EventType) error {

	result := r.db.
		WithContext(ctx).
		Save(et)

	return translate(result.Error)
}

// DeleteEventType detaches referencing events (they keep their snapshot) and
// removes the type in one transaction.
func (r *EventTypeRepo) DeleteEventType(ctx context.Context, id string, now time.Time) error {

	err := r.db.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			err := tx.
				Model(&model.Event{}).
				Where("event_type_id = ?", id).
				Updates(map[string]any{"event_type_id": nil, "updated_at": now}).
				Error
			if err != nil {
				return err
			}

			result := tx.
				Where("id = ?", id).
				Delete(&model.EventType{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})

	return translate(err)
}
