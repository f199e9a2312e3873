package service

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// memStore is an in-memory stand-in for every repository the services use.
type memStore struct {
	mu            sync.Mutex
	events        map[string]model.Event
	types         map[string]model.EventType
	profiles      map[string]model.Profile
	notifications map[string]model.Notification
}

func newMemStore() *memStore {
	return &memStore{
		events:        map[string]model.Event{},
		types:         map[string]model.EventType{},
		profiles:      map[string]model.Profile{},
		notifications: map[string]model.Notification{},
	}
}

func (s *memStore) withType(e model.Event) model.Event {
	e.EventType = nil
	if e.EventTypeID != nil {
		if et, ok := s.types[*e.EventTypeID]; ok {
			e.EventType = &et
		}
	}
	return e
}

func (s *memStore) sorted(match func(model.Event) bool) []model.Event {
	out := []model.Event{}
	for _, e := range s.events {
		if match(e) {
			out = append(out, s.withType(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

func (s *memStore) CreateEvent(_ context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; ok {
		return model.ErrConflict
	}
	stored := *event
	stored.EventType = nil
	s.events[event.ID] = stored
	return nil
}

func (s *memStore) GetEvent(_ context.Context, id string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return model.Event{}, model.ErrNotFound
	}
	return s.withType(e), nil
}

func (s *memStore) UpdateEvent(_ context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *event
	stored.EventType = nil
	s.events[event.ID] = stored
	return nil
}

func (s *memStore) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *memStore) UpdateSharedWith(_ context.Context, id string, sharedWith []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return model.ErrNotFound
	}
	e.SharedWith = sharedWith
	e.UpdatedAt = now
	s.events[id] = e
	return nil
}

func (s *memStore) ListEvents(_ context.Context, ownerID string, from, to time.Time) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(e model.Event) bool {
		return e.UserID == ownerID && !e.StartDate.Before(from) && e.StartDate.Before(to)
	}), nil
}

func (s *memStore) ListAgenda(_ context.Context, ownerID string, from time.Time) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(e model.Event) bool {
		return e.UserID == ownerID && (!e.StartDate.Before(from) || e.Status == model.Overdue)
	}), nil
}

func (s *memStore) ListByOwners(_ context.Context, ownerIDs []string) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(e model.Event) bool {
		return slices.Contains(ownerIDs, e.UserID)
	}), nil
}

func (s *memStore) ListStale(_ context.Context, ownerID string, now time.Time) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := []model.EventStatus{model.Scheduled, model.Pending, model.Overdue}
	return s.sorted(func(e model.Event) bool {
		return e.UserID == ownerID && slices.Contains(open, e.Status) && e.EffectiveEnd().Before(now)
	}), nil
}

func (s *memStore) UpdateStatuses(_ context.Context, ids []string, status model.EventStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		e := s.events[id]
		e.Status = status
		e.UpdatedAt = now
		s.events[id] = e
	}
	return nil
}

func (s *memStore) CountByStatus(_ context.Context, ownerID string, status model.EventStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.events {
		if e.UserID == ownerID && e.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CountUpcoming(_ context.Context, ownerID string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.events {
		if e.UserID == ownerID && (e.Status == model.Scheduled || e.Status == model.Pending) && !e.StartDate.Before(now) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListEventTypes(_ context.Context, ownerID string) ([]model.EventType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.EventType{}
	for _, et := range s.types {
		if et.UserID == ownerID {
			out = append(out, et)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) GetEventType(_ context.Context, id string) (model.EventType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	et, ok := s.types[id]
	if !ok {
		return model.EventType{}, model.ErrNotFound
	}
	return et, nil
}

func (s *memStore) FindEventTypeByName(_ context.Context, ownerID, name string) (model.EventType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, et := range s.types {
		if et.UserID == ownerID && et.Name == name {
			return et, nil
		}
	}
	return model.EventType{}, model.ErrNotFound
}

func (s *memStore) CreateEventType(_ context.Context, et *model.EventType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.types {
		if existing.UserID == et.UserID && existing.Name == et.Name {
			return fmt.Errorf("%w: duplicate name", model.ErrConflict)
		}
	}
	s.types[et.ID] = *et
	return nil
}

func (s *memStore) UpdateEventType(_ context.Context, et *model.EventType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[et.ID] = *et
	return nil
}

func (s *memStore) DeleteEventType(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[id]; !ok {
		return model.ErrNotFound
	}
	for eid, e := range s.events {
		if e.EventTypeID != nil && *e.EventTypeID == id {
			e.EventTypeID = nil
			e.UpdatedAt = now
			s.events[eid] = e
		}
	}
	delete(s.types, id)
	return nil
}

func (s *memStore) GetProfile(_ context.Context, id string) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, model.ErrNotFound
	}
	return p, nil
}

func (s *memStore) GetProfileByEmail(_ context.Context, email string) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return model.Profile{}, model.ErrNotFound
}

func (s *memStore) UpdateAllowedEditors(_ context.Context, id string, editors []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return model.ErrNotFound
	}
	p.AllowedEditors = editors
	p.UpdatedAt = now
	s.profiles[id] = p
	return nil
}

func (s *memStore) ListEditableOwners(_ context.Context, actorID string) ([]model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Profile{}
	for _, p := range s.profiles {
		if p.AllowsEditor(actorID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListFamilyMembers(_ context.Context, familyID string) ([]model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Profile{}
	for _, p := range s.profiles {
		if p.InFamily(familyID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) SetFamily(_ context.Context, id string, familyID *string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return model.ErrNotFound
	}
	p.FamilyID = familyID
	p.UpdatedAt = now
	s.profiles[id] = p
	return nil
}

func (s *memStore) CreateNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = *n
	return nil
}

func (s *memStore) GetNotification(_ context.Context, id string) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return model.Notification{}, model.ErrNotFound
	}
	return n, nil
}

func (s *memStore) ListNotifications(_ context.Context, recipientID string) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Notification{}
	for _, n := range s.notifications {
		if n.ToUserID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *memStore) HasPendingRequest(_ context.Context, fromID, toID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.FromUserID == fromID && n.ToUserID == toID && n.Status == model.NotificationPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ResolveNotification(_ context.Context, n model.Notification, status model.NotificationStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.notifications[n.ID]
	if !ok || stored.Status != model.NotificationPending {
		return model.ErrNotFound
	}
	stored.Status = status
	stored.UpdatedAt = now
	s.notifications[n.ID] = stored

	if status == model.NotificationAccepted {
		p := s.profiles[n.ToUserID]
		familyID := n.Payload.FamilyID
		p.FamilyID = &familyID
		s.profiles[n.ToUserID] = p
	}
	return nil
}

func (s *memStore) addProfile(p model.Profile) {
	s.profiles[p.ID] = p
}

func (s *memStore) addType(et model.EventType) {
	s.types[et.ID] = et
}

func (s *memStore) addEvent(e model.Event) {
	s.events[e.ID] = e
}

type published struct {
	topic   string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{topic: topic, payload: payload})
	return p.err
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, m := range p.sent {
		out = append(out, m.topic)
	}
	return out
}

// testEnv wires every service over one memStore at a fixed instant.
type testEnv struct {
	store     *memStore
	clock     *fixedClock
	logs      *observer.ObservedLogs
	publisher *recordingPublisher
	access    *AccessControl
	sharing   *SharingEngine
	status    *StatusMaintainer
	registry  *TypeRegistry
	events    *EventService
	calendars *CalendarService
	families  *FamilyService
}

// sweepTime is 2024-03-10T11:00 UTC, a Sunday.
var sweepTime = time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	store := newMemStore()
	clock := &fixedClock{now: now}
	publisher := &recordingPublisher{}

	access := NewAccessControl(store, clock, log)
	sharing := NewSharingEngine(store, store, access, publisher, clock, log)
	status := NewStatusMaintainer(store, clock, log)

	return &testEnv{
		store:     store,
		clock:     clock,
		logs:      logs,
		publisher: publisher,
		access:    access,
		sharing:   sharing,
		status:    status,
		registry:  NewTypeRegistry(store, clock, log),
		events:    NewEventService(store, store, access, sharing, clock, log),
		calendars: NewCalendarService(store, sharing, access, status, clock, time.UTC, time.Sunday, log),
		families:  NewFamilyService(store, store, publisher, clock, log),
	}
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
