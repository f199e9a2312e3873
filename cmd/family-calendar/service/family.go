package service

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// FamilyService manages family membership and family-join requests.
// A family is only the set of profiles sharing a family_id.
type FamilyService struct {
	profiles      IProfileRepo
	notifications INotificationRepo
	publisher     Publisher
	clock         Clock
	log           *zap.Logger
}

func NewFamilyService(profiles IProfileRepo, notifications INotificationRepo, publisher Publisher, clock Clock, log *zap.Logger) *FamilyService {
	return &FamilyService{
		profiles:      profiles,
		notifications: notifications,
		publisher:     publisher,
		clock:         clock,
		log:           log.Named("family"),
	}
}

// InviteResult is what the inviter learns. The request itself is not
// serialized, so a sent request and an unknown email answer alike.
type InviteResult struct {
	// Joined is true when the invitee had no family and was added directly.
	Joined       bool                `json:"joined"`
	Notification *model.Notification `json:"-"`
}

func (s *FamilyService) Family(ctx context.Context, actorID string) (model.FamilyGroup, error) {
	actor, err := s.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return model.FamilyGroup{}, fmt.Errorf("load profile: %w", err)
	}
	if actor.FamilyID == nil {
		return model.FamilyGroup{}, fmt.Errorf("no family: %w", model.ErrNotFound)
	}
	return s.group(ctx, *actor.FamilyID)
}

func (s *FamilyService) CreateFamily(ctx context.Context, actorID string) (model.FamilyGroup, error) {
	actor, err := s.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return model.FamilyGroup{}, fmt.Errorf("load profile: %w", err)
	}
	if actor.FamilyID != nil {
		return model.FamilyGroup{}, fmt.Errorf("already in a family: %w", model.ErrConflict)
	}

	familyID, err := newID()
	if err != nil {
		return model.FamilyGroup{}, err
	}
	if err := s.profiles.SetFamily(ctx, actorID, &familyID, s.clock.Now()); err != nil {
		return model.FamilyGroup{}, fmt.Errorf("create family: %w", err)
	}

	s.log.Info("family created", zap.String("family_id", familyID), zap.String("actor_id", actorID))
	return s.group(ctx, familyID)
}

// Invite adds the user with the given email to the actor's family. A user
// without a family joins at once; a user already in another family gets a
// pending family_request to accept or decline. An unknown email yields the
// same empty result as a sent request.
func (s *FamilyService) Invite(ctx context.Context, actorID, email string) (InviteResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		v := model.NewValidationError()
		v.Add("email", "is required")
		return InviteResult{}, v
	}

	actor, err := s.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return InviteResult{}, fmt.Errorf("load profile: %w", err)
	}
	if actor.FamilyID == nil {
		v := model.NewValidationError()
		v.Add("family", "create or join a family before inviting")
		return InviteResult{}, v
	}
	familyID := *actor.FamilyID

	invitee, err := s.profiles.GetProfileByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		s.log.Debug("invite to unknown email", zap.String("actor_id", actorID))
		return InviteResult{}, nil
	}
	if err != nil {
		return InviteResult{}, fmt.Errorf("find invitee: %w", err)
	}
	if invitee.ID == actor.ID {
		v := model.NewValidationError()
		v.Add("email", "cannot invite yourself")
		return InviteResult{}, v
	}
	if invitee.InFamily(familyID) {
		return InviteResult{}, fmt.Errorf("already a member: %w", model.ErrConflict)
	}

	now := s.clock.Now()

	if invitee.FamilyID == nil {
		if err := s.profiles.SetFamily(ctx, invitee.ID, &familyID, now); err != nil {
			return InviteResult{}, fmt.Errorf("join family: %w", err)
		}
		s.publish(ctx, TopicFamilyJoined, map[string]any{
			"family_id":  familyID,
			"user_id":    invitee.ID,
			"invited_by": actorID,
		})
		return InviteResult{Joined: true}, nil
	}

	pending, err := s.notifications.HasPendingRequest(ctx, actorID, invitee.ID)
	if err != nil {
		return InviteResult{}, fmt.Errorf("check pending requests: %w", err)
	}
	if pending {
		return InviteResult{}, fmt.Errorf("request already pending: %w", model.ErrConflict)
	}

	id, err := newID()
	if err != nil {
		return InviteResult{}, err
	}
	n := model.Notification{
		ID:         id,
		Type:       model.FamilyRequest,
		FromUserID: actorID,
		ToUserID:   invitee.ID,
		Payload:    model.NotificationPayload{FamilyID: familyID},
		Status:     model.NotificationPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.notifications.CreateNotification(ctx, &n); err != nil {
		return InviteResult{}, fmt.Errorf("create family request: %w", err)
	}

	s.publish(ctx, TopicFamilyRequest, n)
	return InviteResult{Notification: &n}, nil
}

func (s *FamilyService) Notifications(ctx context.Context, actorID string) ([]model.Notification, error) {
	notifications, err := s.notifications.ListNotifications(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// Respond accepts or declines a pending family request addressed to actorID.
// Accepting moves the actor into the requesting family.
func (s *FamilyService) Respond(ctx context.Context, actorID, notificationID string, accept bool) (model.Notification, error) {
	n, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return model.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	if n.ToUserID != actorID {
		return model.Notification{}, fmt.Errorf("notification %s: %w", notificationID, model.ErrNotFound)
	}
	if n.Status != model.NotificationPending {
		return model.Notification{}, fmt.Errorf("notification already %s: %w", n.Status, model.ErrConflict)
	}

	status := model.NotificationDeclined
	if accept {
		status = model.NotificationAccepted
	}

	now := s.clock.Now()
	err = s.notifications.ResolveNotification(ctx, n, status, now)
	if errors.Is(err, model.ErrNotFound) {
		// Someone resolved it between our read and the update.
		return model.Notification{}, fmt.Errorf("notification no longer pending: %w", model.ErrConflict)
	}
	if err != nil {
		return model.Notification{}, fmt.Errorf("resolve notification: %w", err)
	}

	n.Status = status
	n.UpdatedAt = now

	s.log.Info("family request resolved",
		zap.String("notification_id", n.ID),
		zap.String("status", string(status)),
		zap.String("actor_id", actorID))
	s.publish(ctx, TopicFamilyResolved, n)

	return n, nil
}

func (s *FamilyService) Leave(ctx context.Context, actorID string) error {
	actor, err := s.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if actor.FamilyID == nil {
		return fmt.Errorf("not in a family: %w", model.ErrConflict)
	}

	if err := s.profiles.SetFamily(ctx, actorID, nil, s.clock.Now()); err != nil {
		return fmt.Errorf("leave family: %w", err)
	}

	s.publish(ctx, TopicFamilyLeft, map[string]any{
		"family_id": *actor.FamilyID,
		"user_id":   actorID,
	})
	return nil
}

func (s *FamilyService) group(ctx context.Context, familyID string) (model.FamilyGroup, error) {
	members, err := s.profiles.ListFamilyMembers(ctx, familyID)
	if err != nil {
		return model.FamilyGroup{}, fmt.Errorf("list family members: %w", err)
	}
	return model.NewFamilyGroup(familyID, members), nil
}

func (s *FamilyService) publish(ctx context.Context, topic string, payload any) {
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.log.Warn("publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
