package service

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"

	"go.uber.org/zap"
)

// AccessControl answers whether an actor may mutate an owner's calendar.
type AccessControl struct {
	profiles IProfileRepo
	clock    Clock
	log      *zap.Logger
}

func NewAccessControl(profiles IProfileRepo, clock Clock, log *zap.Logger) *AccessControl {
	return &AccessControl{
		profiles: profiles,
		clock:    clock,
		log:      log.Named("access"),
	}
}

// CanEdit is true for the owner and for ids on the owner's allow-list.
// It fails closed: an owner that cannot be loaded grants nothing.
func (a *AccessControl) CanEdit(ctx context.Context, ownerID, actorID string) bool {
	if actorID == "" || ownerID == "" {
		return false
	}
	if actorID == ownerID {
		return true
	}

	owner, err := a.profiles.GetProfile(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.log.Debug("owner lookup failed, denying edit",
				zap.String("owner_id", ownerID),
				zap.String("actor_id", actorID),
				zap.Error(err))
		}
		return false
	}

	return owner.AllowsEditor(actorID)
}

func (a *AccessControl) AllowedEditors(ctx context.Context, ownerID string) ([]string, error) {
	owner, err := a.profiles.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	if owner.AllowedEditors == nil {
		return []string{}, nil
	}
	return owner.AllowedEditors, nil
}

// SetAllowedEditors replaces the owner's allow-list. Callers must have
// checked that the actor is the owner.
func (a *AccessControl) SetAllowedEditors(ctx context.Context, ownerID string, editors []string) ([]string, error) {
	cleaned := make([]string, 0, len(editors))
	seen := map[string]bool{}
	for _, id := range editors {
		if id == "" || id == ownerID || seen[id] {
			continue
		}
		seen[id] = true
		cleaned = append(cleaned, id)
	}

	if err := a.profiles.UpdateAllowedEditors(ctx, ownerID, cleaned, a.clock.Now()); err != nil {
		return nil, fmt.Errorf("update allowed editors: %w", err)
	}

	a.log.Info("allowed editors updated",
		zap.String("owner_id", ownerID),
		zap.Int("editors", len(cleaned)))

	return cleaned, nil
}

// EditableCalendars lists the owners who have delegated edit rights to actorID.
func (a *AccessControl) EditableCalendars(ctx context.Context, actorID string) ([]model.Profile, error) {
	owners, err := a.profiles.ListEditableOwners(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list editable calendars: %w", err)
	}

	// The LIKE prefilter can over-match; confirm against the decoded set.
	out := make([]model.Profile, 0, len(owners))
	for _, o := range owners {
		if o.AllowsEditor(actorID) {
			out = append(out, o)
		}
	}
	return out, nil
}
