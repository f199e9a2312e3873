package service

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxTypeNameLength = 50

// TypeRegistry is the per-user catalog of event types.
type TypeRegistry struct {
	types IEventTypeRepo
	clock Clock
	log   *zap.Logger
}

func NewTypeRegistry(types IEventTypeRepo, clock Clock, log *zap.Logger) *TypeRegistry {
	return &TypeRegistry{
		types: types,
		clock: clock,
		log:   log.Named("event_types"),
	}
}

// ListTypes returns the owner's types, seeding the built-ins when the list is empty.
func (r *TypeRegistry) ListTypes(ctx context.Context, ownerID string) ([]model.EventType, error) {
	types, err := r.types.ListEventTypes(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list event types: %w", err)
	}
	if len(types) > 0 {
		return types, nil
	}

	if err := r.seedDefaults(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("seed default event types: %w", err)
	}

	types, err = r.types.ListEventTypes(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list event types: %w", err)
	}
	return types, nil
}

// seedDefaults creates each built-in type if absent. A unique-key conflict
// means a concurrent request seeded it first, which is fine.
func (r *TypeRegistry) seedDefaults(ctx context.Context, ownerID string) error {
	now := r.clock.Now()
	seeded := 0

	for _, et := range model.DefaultEventTypes() {
		id, err := newID()
		if err != nil {
			return err
		}
		et.ID = id
		et.UserID = ownerID
		et.CreatedAt = now
		et.UpdatedAt = now

		err = r.types.CreateEventType(ctx, &et)
		if errors.Is(err, model.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}
		seeded++
	}

	r.log.Info("seeded default event types", zap.String("owner_id", ownerID), zap.Int("created", seeded))
	return nil
}

func (r *TypeRegistry) GetType(ctx context.Context, id, ownerID string) (model.EventType, error) {
	et, err := r.types.GetEventType(ctx, id)
	if err != nil {
		return model.EventType{}, fmt.Errorf("get event type: %w", err)
	}
	if et.UserID != ownerID {
		return model.EventType{}, fmt.Errorf("event type %s: %w", id, model.ErrForbidden)
	}
	return et, nil
}

// CreateType adds a type. A name already used by the same owner is a
// Conflict; it is never silently ignored.
func (r *TypeRegistry) CreateType(ctx context.Context, ownerID string, input model.EventType) (model.EventType, error) {
	et := input
	et.Name = strings.TrimSpace(et.Name)
	if err := validateTypeName(et.Name); err != nil {
		return model.EventType{}, err
	}
	if et.Icon == "" {
		et.Icon = model.DefaultTypeIcon
	}
	if et.Color == "" {
		et.Color = model.DefaultTypeColor
	}
	if et.BgColor == "" {
		et.BgColor = model.DefaultTypeBgColor
	}

	if err := r.ensureNameFree(ctx, ownerID, et.Name, ""); err != nil {
		return model.EventType{}, err
	}

	id, err := newID()
	if err != nil {
		return model.EventType{}, err
	}
	now := r.clock.Now()
	et.ID = id
	et.UserID = ownerID
	et.CreatedAt = now
	et.UpdatedAt = now

	if err := r.types.CreateEventType(ctx, &et); err != nil {
		return model.EventType{}, fmt.Errorf("create event type %q: %w", et.Name, err)
	}
	return et, nil
}

// UpdateType applies a partial patch; fields left nil keep their value.
func (r *TypeRegistry) UpdateType(ctx context.Context, id string, patch model.EventTypePatch, ownerID string) (model.EventType, error) {
	et, err := r.GetType(ctx, id, ownerID)
	if err != nil {
		return model.EventType{}, err
	}

	oldName := et.Name
	patch.Apply(&et)

	if et.Name != oldName {
		if err := validateTypeName(et.Name); err != nil {
			return model.EventType{}, err
		}
		if err := r.ensureNameFree(ctx, ownerID, et.Name, et.ID); err != nil {
			return model.EventType{}, err
		}
	}

	et.UpdatedAt = r.clock.Now()
	if err := r.types.UpdateEventType(ctx, &et); err != nil {
		return model.EventType{}, fmt.Errorf("update event type: %w", err)
	}
	return et, nil
}

// DeleteType removes a type. Its events stay and render from their snapshot.
func (r *TypeRegistry) DeleteType(ctx context.Context, id, ownerID string) error {
	if _, err := r.GetType(ctx, id, ownerID); err != nil {
		return err
	}
	if err := r.types.DeleteEventType(ctx, id, r.clock.Now()); err != nil {
		return fmt.Errorf("delete event type: %w", err)
	}
	return nil
}

func (r *TypeRegistry) ensureNameFree(ctx context.Context, ownerID, name, selfID string) error {
	existing, err := r.types.FindEventTypeByName(ctx, ownerID, name)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("look up event type name: %w", err)
	case existing.ID == selfID:
		return nil
	default:
		return fmt.Errorf("event type %q already exists: %w", name, model.ErrConflict)
	}
}

func validateTypeName(name string) error {
	v := model.NewValidationError()
	switch {
	case name == "":
		v.Add("name", "is required")
	case utf8.RuneCountInString(name) > maxTypeNameLength:
		v.Add("name", fmt.Sprintf("must be at most %d characters", maxTypeNameLength))
	}
	return v.OrNil()
}
