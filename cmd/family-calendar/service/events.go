package service

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxTitleLength = 200

// EventService is the actor-aware front of the event store. Every mutation
// passes through AccessControl first.
//
// Reads answer NotFound for both missing and invisible events, mutations
// answer Forbidden for both missing and non-editable ones, so ids cannot be
// guessed either way.
type EventService struct {
	events  IEventRepo
	types   IEventTypeRepo
	access  *AccessControl
	sharing *SharingEngine
	clock   Clock
	log     *zap.Logger
}

func NewEventService(events IEventRepo, types IEventTypeRepo, access *AccessControl, sharing *SharingEngine, clock Clock, log *zap.Logger) *EventService {
	return &EventService{
		events:  events,
		types:   types,
		access:  access,
		sharing: sharing,
		clock:   clock,
		log:     log.Named("events"),
	}
}

func (s *EventService) Create(ctx context.Context, actorID, ownerID string, req model.EventCreateRequest) (model.EventView, error) {
	if !s.access.CanEdit(ctx, ownerID, actorID) {
		return model.EventView{}, fmt.Errorf("create event for %s: %w", ownerID, model.ErrForbidden)
	}

	id, err := newID()
	if err != nil {
		return model.EventView{}, err
	}
	now := s.clock.Now()

	event := model.Event{
		ID:                id,
		UserID:            ownerID,
		CreatedBy:         actorID,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Notes:             req.Notes,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Location:          strings.TrimSpace(req.Location),
		MeetingURL:        strings.TrimSpace(req.MeetingURL),
		EventTypeID:       req.EventTypeID,
		Status:            model.Scheduled,
		IsImportant:       req.IsImportant,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: strings.ToLower(req.RecurrencePattern),
		SharedWith:        req.SharedWith,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if event.SharedWith == nil {
		event.SharedWith = []string{}
	}

	v := model.NewValidationError()
	s.attachType(ctx, &event, v)
	validateEvent(event, v)
	if err := v.OrNil(); err != nil {
		return model.EventView{}, err
	}

	if err := s.events.CreateEvent(ctx, &event); err != nil {
		return model.EventView{}, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("owner_id", ownerID),
		zap.String("actor_id", actorID))

	return model.NewEventView(event, now), nil
}

func (s *EventService) Get(ctx context.Context, actorID, eventID string) (model.EventView, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return model.EventView{}, fmt.Errorf("get event: %w", err)
	}

	ok, err := s.sharing.CanView(ctx, event, actorID)
	if err != nil {
		return model.EventView{}, fmt.Errorf("get event: %w", err)
	}
	if !ok {
		return model.EventView{}, fmt.Errorf("get event %s: %w", eventID, model.ErrNotFound)
	}

	return model.NewEventView(event, s.clock.Now()), nil
}

func (s *EventService) Update(ctx context.Context, actorID, eventID string, patch model.EventPatch) (model.EventView, error) {
	event, err := s.editable(ctx, actorID, eventID)
	if err != nil {
		return model.EventView{}, err
	}

	now := s.clock.Now()
	v := model.NewValidationError()
	typeChanged := applyEventPatch(&event, patch, v)
	if typeChanged {
		s.attachType(ctx, &event, v)
	}
	validateEvent(event, v)
	if err := v.OrNil(); err != nil {
		return model.EventView{}, err
	}

	// Moving a missed event into the future makes it pending again.
	if event.Status == model.Overdue && patch.Status == nil && event.EffectiveEnd().After(now) {
		event.Status = model.Scheduled
	}

	event.UpdatedAt = now
	if err := s.events.UpdateEvent(ctx, &event); err != nil {
		return model.EventView{}, fmt.Errorf("update event: %w", err)
	}

	s.log.Info("event updated",
		zap.String("event_id", event.ID),
		zap.String("owner_id", event.UserID),
		zap.String("actor_id", actorID))

	return model.NewEventView(event, now), nil
}

// Delete is a hard delete; no tombstone is kept.
func (s *EventService) Delete(ctx context.Context, actorID, eventID string) error {
	event, err := s.editable(ctx, actorID, eventID)
	if err != nil {
		return err
	}

	if err := s.events.DeleteEvent(ctx, event.ID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	s.log.Info("event deleted",
		zap.String("event_id", event.ID),
		zap.String("owner_id", event.UserID),
		zap.String("actor_id", actorID))
	return nil
}

// List returns the owner's events starting in [from, to) that actorID may see.
func (s *EventService) List(ctx context.Context, actorID, ownerID string, from, to time.Time) ([]model.EventView, error) {
	if !to.After(from) {
		v := model.NewValidationError()
		v.Add("to", "must be after from")
		return nil, v
	}

	events, err := s.events.ListEvents(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	visible, err := s.sharing.Visible(ctx, ownerID, actorID, events)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return toViews(visible, s.clock.Now()), nil
}

func (s *EventService) SharedWithMe(ctx context.Context, actorID string) ([]model.EventView, error) {
	events, err := s.sharing.SharedWithMe(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return toViews(events, s.clock.Now()), nil
}

func (s *EventService) editable(ctx context.Context, actorID, eventID string) (model.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Event{}, fmt.Errorf("event %s: %w", eventID, model.ErrForbidden)
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	if !s.access.CanEdit(ctx, event.UserID, actorID) {
		return model.Event{}, fmt.Errorf("event %s: %w", eventID, model.ErrForbidden)
	}
	return event, nil
}

// attachType resolves event.EventTypeID against the owner's catalog and
// refreshes the icon/color snapshot used once the type is deleted.
func (s *EventService) attachType(ctx context.Context, event *model.Event, v *model.ValidationError) {
	event.EventType = nil
	if event.EventTypeID == nil {
		return
	}

	et, err := s.types.GetEventType(ctx, *event.EventTypeID)
	if err != nil || et.UserID != event.UserID {
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			s.log.Warn("event type lookup failed", zap.String("event_type_id", *event.EventTypeID), zap.Error(err))
		}
		v.Add("event_type_id", "unknown event type")
		return
	}

	event.EventType = &et
	event.FallbackIcon = et.Icon
	event.FallbackColor = et.Color
	event.FallbackBgColor = et.BgColor
}

// applyEventPatch copies the set fields of patch onto event and reports
// whether the event type changed.
func applyEventPatch(event *model.Event, patch model.EventPatch, v *model.ValidationError) bool {
	if patch.Title != nil {
		event.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Notes != nil {
		event.Notes = *patch.Notes
	}
	if patch.StartDate != nil {
		event.StartDate = *patch.StartDate
	}
	if patch.ClearEndDate {
		event.EndDate = nil
	} else if patch.EndDate != nil {
		end := *patch.EndDate
		event.EndDate = &end
	}
	if patch.Location != nil {
		event.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.MeetingURL != nil {
		event.MeetingURL = strings.TrimSpace(*patch.MeetingURL)
	}
	if patch.Status != nil {
		switch *patch.Status {
		case model.Scheduled, model.Completed, model.Cancelled:
			event.Status = *patch.Status
		default:
			v.Add("status", "must be one of scheduled, completed, cancelled")
		}
	}
	if patch.IsImportant != nil {
		event.IsImportant = *patch.IsImportant
	}
	if patch.IsRecurring != nil {
		event.IsRecurring = *patch.IsRecurring
	}
	if patch.RecurrencePattern != nil {
		event.RecurrencePattern = strings.ToLower(*patch.RecurrencePattern)
	}

	typeChanged := false
	if patch.ClearEventType {
		typeChanged = event.EventTypeID != nil
		event.EventTypeID = nil
		event.EventType = nil
	} else if patch.EventTypeID != nil {
		typeChanged = event.EventTypeID == nil || *event.EventTypeID != *patch.EventTypeID
		id := *patch.EventTypeID
		event.EventTypeID = &id
	}
	return typeChanged
}

// validateEvent checks the form-level rules. end >= start is enforced here,
// not by the storage layer.
func validateEvent(e model.Event, v *model.ValidationError) {
	switch {
	case e.Title == "":
		v.Add("title", "is required")
	case utf8.RuneCountInString(e.Title) > maxTitleLength:
		v.Add("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}

	if e.StartDate.IsZero() {
		v.Add("start_date", "is required")
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		v.Add("end_date", "must not be before start_date")
	}

	if e.IsRecurring {
		if e.RecurrencePattern == "" {
			v.Add("recurrence_pattern", "is required for recurring events")
		} else if !model.ValidRecurrencePattern(e.RecurrencePattern) {
			v.Add("recurrence_pattern", "must be one of "+strings.Join(model.RecurrencePatterns, ", "))
		}
	} else if e.RecurrencePattern != "" && !model.ValidRecurrencePattern(e.RecurrencePattern) {
		v.Add("recurrence_pattern", "must be one of "+strings.Join(model.RecurrencePatterns, ", "))
	}

	if et := e.EventType; et != nil {
		if et.RequiresEndTime && e.EndDate == nil {
			v.Add("end_date", "is required for "+et.Name)
		}
		if et.RequiresLocation && e.Location == "" {
			v.Add("location", "is required for "+et.Name)
		}
		if et.RequiresURL && e.MeetingURL == "" {
			v.Add("meeting_url", "is required for "+et.Name)
		}
	}
}

func toViews(events []model.Event, now time.Time) []model.EventView {
	out := make([]model.EventView, 0, len(events))
	for _, e := range events {
		out = append(out, model.NewEventView(e, now))
	}
	return out
}
