package service

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"time"

	"github.com/google/uuid"
)

type IEventRepo interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	GetEvent(ctx context.Context, id string) (model.Event, error)
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	UpdateSharedWith(ctx context.Context, id string, sharedWith []string, now time.Time) error
	ListEvents(ctx context.Context, ownerID string, from, to time.Time) ([]model.Event, error)
	ListAgenda(ctx context.Context, ownerID string, from time.Time) ([]model.Event, error)
	ListByOwners(ctx context.Context, ownerIDs []string) ([]model.Event, error)
	ListStale(ctx context.Context, ownerID string, now time.Time) ([]model.Event, error)
	UpdateStatuses(ctx context.Context, ids []string, status model.EventStatus, now time.Time) error
	CountByStatus(ctx context.Context, ownerID string, status model.EventStatus) (int64, error)
	CountUpcoming(ctx context.Context, ownerID string, now time.Time) (int64, error)
}

type IEventTypeRepo interface {
	ListEventTypes(ctx context.Context, ownerID string) ([]model.EventType, error)
	GetEventType(ctx context.Context, id string) (model.EventType, error)
	FindEventTypeByName(ctx context.Context, ownerID, name string) (model.EventType, error)
	CreateEventType(ctx context.Context, et *model.EventType) error
	UpdateEventType(ctx context.Context, et *model.EventType) error
	DeleteEventType(ctx context.Context, id string, now time.Time) error
}

type IProfileRepo interface {
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (model.Profile, error)
	UpdateAllowedEditors(ctx context.Context, id string, editors []string, now time.Time) error
	ListEditableOwners(ctx context.Context, actorID string) ([]model.Profile, error)
	ListFamilyMembers(ctx context.Context, familyID string) ([]model.Profile, error)
	SetFamily(ctx context.Context, id string, familyID *string, now time.Time) error
}

type INotificationRepo interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, id string) (model.Notification, error)
	ListNotifications(ctx context.Context, recipientID string) ([]model.Notification, error)
	HasPendingRequest(ctx context.Context, fromID, toID string) (bool, error)
	ResolveNotification(ctx context.Context, n model.Notification, status model.NotificationStatus, now time.Time) error
}

// Publisher hands domain events to whatever delivers them (push, email...).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

const (
	TopicFamilyRequest  = "family.request_created"
	TopicFamilyResolved = "family.request_resolved"
	TopicFamilyJoined   = "family.member_joined"
	TopicFamilyLeft     = "family.member_left"
	TopicEventShared    = "event.shared"
)

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
