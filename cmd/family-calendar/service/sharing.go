package service

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// SharingEngine manages per-event visibility lists.
//
// Targets are stored as given: ids are not deduplicated and not checked
// against current family membership, so a member who left stays listed
// until the event is edited.
type SharingEngine struct {
	events    IEventRepo
	profiles  IProfileRepo
	access    *AccessControl
	publisher Publisher
	clock     Clock
	log       *zap.Logger
}

func NewSharingEngine(events IEventRepo, profiles IProfileRepo, access *AccessControl, publisher Publisher, clock Clock, log *zap.Logger) *SharingEngine {
	return &SharingEngine{
		events:    events,
		profiles:  profiles,
		access:    access,
		publisher: publisher,
		clock:     clock,
		log:       log.Named("sharing"),
	}
}

// SharedWith reports whether the event's list names actorID, either directly
// or through the family sentinel when actor and owner share a family.
func SharedWith(e model.Event, actorID string, sameFamily bool) bool {
	if slices.Contains(e.SharedWith, actorID) {
		return true
	}
	return sameFamily && slices.Contains(e.SharedWith, model.ShareFamily)
}

func (s *SharingEngine) SetSharedWith(ctx context.Context, eventID string, targets []string, actorID string) (model.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Event{}, fmt.Errorf("share event %s: %w", eventID, model.ErrForbidden)
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("share event: %w", err)
	}
	if !s.access.CanEdit(ctx, event.UserID, actorID) {
		return model.Event{}, fmt.Errorf("share event %s: %w", eventID, model.ErrForbidden)
	}

	if targets == nil {
		targets = []string{}
	}
	now := s.clock.Now()
	if err := s.events.UpdateSharedWith(ctx, eventID, targets, now); err != nil {
		return model.Event{}, fmt.Errorf("share event: %w", err)
	}
	event.SharedWith = targets
	event.UpdatedAt = now

	s.publish(ctx, TopicEventShared, map[string]any{
		"event_id":    event.ID,
		"owner_id":    event.UserID,
		"shared_by":   actorID,
		"shared_with": targets,
	})

	return event, nil
}

// Visible filters an owner's events down to what actorID may see. Editors
// see everything; everyone else sees only events shared with them.
func (s *SharingEngine) Visible(ctx context.Context, ownerID, actorID string, events []model.Event) ([]model.Event, error) {
	if s.access.CanEdit(ctx, ownerID, actorID) {
		return events, nil
	}

	sameFamily, err := s.sameFamily(ctx, ownerID, actorID)
	if err != nil {
		return nil, err
	}

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if SharedWith(e, actorID, sameFamily) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *SharingEngine) CanView(ctx context.Context, e model.Event, actorID string) (bool, error) {
	visible, err := s.Visible(ctx, e.UserID, actorID, []model.Event{e})
	if err != nil {
		return false, err
	}
	return len(visible) == 1, nil
}

// SharedWithMe returns other family members' events shared with actorID.
func (s *SharingEngine) SharedWithMe(ctx context.Context, actorID string) ([]model.Event, error) {
	actor, err := s.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}
	if actor.FamilyID == nil {
		return []model.Event{}, nil
	}

	members, err := s.profiles.ListFamilyMembers(ctx, *actor.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	owners := make([]string, 0, len(members))
	for _, m := range members {
		if m.ID != actorID {
			owners = append(owners, m.ID)
		}
	}

	events, err := s.events.ListByOwners(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("list family events: %w", err)
	}

	out := make([]model.Event, 0)
	for _, e := range events {
		if SharedWith(e, actorID, true) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *SharingEngine) sameFamily(ctx context.Context, ownerID, actorID string) (bool, error) {
	if actorID == "" {
		return false, nil
	}
	owner, err := s.profiles.GetProfile(ctx, ownerID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load owner: %w", err)
	}
	if owner.FamilyID == nil {
		return false, nil
	}

	actor, err := s.profiles.GetProfile(ctx, actorID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load actor: %w", err)
	}
	return actor.InFamily(*owner.FamilyID), nil
}

func (s *SharingEngine) publish(ctx context.Context, topic string, payload any) {
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.log.Warn("publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
