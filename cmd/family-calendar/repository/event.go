package repository

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var openStatuses = []model.EventStatus{model.Scheduled, model.Pending, model.Overdue}

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{
		db: db,
	}
}

func (r *EventRepo) CreateEvent(ctx context.Context, event *model.Event) error {

	result := r.db.
		WithContext(ctx).
		Omit(clause.Associations).
		Create(event)

	return translate(result.Error)
}

func (r *EventRepo) GetEvent(ctx context.Context, id string) (model.Event, error) {

	var event model.Event

	result := r.db.
		WithContext(ctx).
		Preload("EventType").
		Where("id = ?", id).
		First(&event)

	if result.Error != nil {
		return model.Event{}, translate(result.Error)
	}

	return event, nil
}

// UpdateEvent overwrites the whole row. Concurrent edits are last-write-wins.
func (r *EventRepo) UpdateEvent(ctx context.Context, event *model.Event) error {

	result := r.db.
		WithContext(ctx).
		Omit(clause.Associations).
		Save(event)

	return translate(result.Error)
}

func (r *EventRepo) DeleteEvent(ctx context.Context, id string) error {

	result := r.db.
		WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Event{})

	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *EventRepo) UpdateSharedWith(ctx context.Context, id string, sharedWith []string, now time.Time) error {

	result := r.db.
		WithContext(ctx).
		Model(&model.Event{ID: id}).
		Select("shared_with", "updated_at").
		Updates(&model.Event{SharedWith: sharedWith, UpdatedAt: now})

	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}

// ListEvents returns the owner's events starting in [from, to), oldest first.
// Bounds are compared in UTC like the stored columns.
func (r *EventRepo) ListEvents(ctx context.Context, ownerID string, from, to time.Time) ([]model.Event, error) {

	var events []model.Event

	result := r.db.
		WithContext(ctx).
		Preload("EventType").
		Where("user_id = ? AND start_date >= ? AND start_date < ?", ownerID, from.UTC(), to.UTC()).
		Order("start_date ASC").
		Find(&events)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return events, nil
}

// ListAgenda returns events starting at or after from, plus every overdue
// event whatever its date.
func (r *EventRepo) ListAgenda(ctx context.Context, ownerID string, from time.Time) ([]model.Event, error) {

	var events []model.Event

	result := r.db.
		WithContext(ctx).
		Preload("EventType").
		Where("user_id = ? AND (start_date >= ? OR status = ?)", ownerID, from.UTC(), model.Overdue).
		Order("start_date ASC").
		Find(&events)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return events, nil
}

func (r *EventRepo) ListByOwners(ctx context.Context, ownerIDs []string) ([]model.Event, error) {

	var events []model.Event
	if len(ownerIDs) == 0 {
		return events, nil
	}

	result := r.db.
		WithContext(ctx).
		Preload("EventType").
		Where("user_id IN ?", ownerIDs).
		Order("start_date ASC").
		Find(&events)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return events, nil
}

// ListStale returns open events whose effective end is before now.
func (r *EventRepo) ListStale(ctx context.Context, ownerID string, now time.Time) ([]model.Event, error) {

	var events []model.Event

	result := r.db.
		WithContext(ctx).
		Preload("EventType").
		Where("user_id = ? AND status IN ? AND COALESCE(end_date, start_date) < ?", ownerID, openStatuses, now.UTC()).
		Order("start_date ASC").
		Find(&events)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return events, nil
}

func (r *EventRepo) UpdateStatuses(ctx context.Context, ids []string, status model.EventStatus, now time.Time) error {

	if len(ids) == 0 {
		return nil
	}

	result := r.db.
		WithContext(ctx).
		Model(&model.Event{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": status, "updated_at": now.UTC()})

	return translate(result.Error)
}

func (r *EventRepo) CountByStatus(ctx context.Context, ownerID string, status model.EventStatus) (int64, error) {

	var count int64

	result := r.db.
		WithContext(ctx).
		Model(&model.Event{}).
		Where("user_id = ? AND status = ?", ownerID, status).
		Count(&count)

	return count, translate(result.Error)
}

func (r *EventRepo) CountUpcoming(ctx context.Context, ownerID string, now time.Time) (int64, error) {

	var count int64

	result := r.db.
		WithContext(ctx).
		Model(&model.Event{}).
		Where("user_id = ? AND status IN ? AND start_date >= ?", ownerID, []model.EventStatus{model.Scheduled, model.Pending}, now.UTC()).
		Count(&count)

	return count, translate(result.Error)
}
