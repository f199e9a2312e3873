package apis

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"family-calendar-backend/cmd/family-calendar/service"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) Create(ctx context.Context, actorID, ownerID string, req model.EventCreateRequest) (model.EventView, error) {
	args := m.Called(ctx, actorID, ownerID, req)
	return args.Get(0).(model.EventView), args.Error(1)
}

func (m *MockEventService) Get(ctx context.Context, actorID, eventID string) (model.EventView, error) {
	args := m.Called(ctx, actorID, eventID)
	return args.Get(0).(model.EventView), args.Error(1)
}

func (m *MockEventService) Update(ctx context.Context, actorID, eventID string, patch model.EventPatch) (model.EventView, error) {
	args := m.Called(ctx, actorID, eventID, patch)
	return args.Get(0).(model.EventView), args.Error(1)
}

func (m *MockEventService) Delete(ctx context.Context, actorID, eventID string) error {
	args := m.Called(ctx, actorID, eventID)
	return args.Error(0)
}

func (m *MockEventService) List(ctx context.Context, actorID, ownerID string, from, to time.Time) ([]model.EventView, error) {
	args := m.Called(ctx, actorID, ownerID, from, to)
	return args.Get(0).([]model.EventView), args.Error(1)
}

func (m *MockEventService) SharedWithMe(ctx context.Context, actorID string) ([]model.EventView, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).([]model.EventView), args.Error(1)
}

type MockSharingEngine struct {
	mock.Mock
}

func (m *MockSharingEngine) SetSharedWith(ctx context.Context, eventID string, targets []string, actorID string) (model.Event, error) {
	args := m.Called(ctx, eventID, targets, actorID)
	return args.Get(0).(model.Event), args.Error(1)
}

type MockTypeRegistry struct {
	mock.Mock
}

func (m *MockTypeRegistry) ListTypes(ctx context.Context, ownerID string) ([]model.EventType, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.EventType), args.Error(1)
}

func (m *MockTypeRegistry) GetType(ctx context.Context, id, ownerID string) (model.EventType, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(model.EventType), args.Error(1)
}

func (m *MockTypeRegistry) CreateType(ctx context.Context, ownerID string, input model.EventType) (model.EventType, error) {
	args := m.Called(ctx, ownerID, input)
	return args.Get(0).(model.EventType), args.Error(1)
}

func (m *MockTypeRegistry) UpdateType(ctx context.Context, id string, patch model.EventTypePatch, ownerID string) (model.EventType, error) {
	args := m.Called(ctx, id, patch, ownerID)
	return args.Get(0).(model.EventType), args.Error(1)
}

func (m *MockTypeRegistry) DeleteType(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) Location() *time.Location {
	return time.UTC
}

func (m *MockCalendarService) MonthGrid(ctx context.Context, actorID, ownerID string, year int, month time.Month) (model.MonthGrid, error) {
	args := m.Called(ctx, actorID, ownerID, year, month)
	return args.Get(0).(model.MonthGrid), args.Error(1)
}

func (m *MockCalendarService) Schedule(ctx context.Context, actorID, ownerID string, day *time.Time, reference time.Time) ([]model.EventView, error) {
	args := m.Called(ctx, actorID, ownerID, day, reference)
	return args.Get(0).([]model.EventView), args.Error(1)
}

func (m *MockCalendarService) Stats(ctx context.Context, actorID, ownerID string) (model.Stats, error) {
	args := m.Called(ctx, actorID, ownerID)
	return args.Get(0).(model.Stats), args.Error(1)
}

type MockProfileReader struct {
	mock.Mock
}

func (m *MockProfileReader) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockProfileReader) TouchLastSeen(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

type MockAccessControl struct {
	mock.Mock
}

func (m *MockAccessControl) CanEdit(ctx context.Context, ownerID, actorID string) bool {
	args := m.Called(ctx, ownerID, actorID)
	return args.Bool(0)
}

func (m *MockAccessControl) AllowedEditors(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAccessControl) SetAllowedEditors(ctx context.Context, ownerID string, editors []string) ([]string, error) {
	args := m.Called(ctx, ownerID, editors)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAccessControl) EditableCalendars(ctx context.Context, actorID string) ([]model.Profile, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).([]model.Profile), args.Error(1)
}

type MockFamilyService struct {
	mock.Mock
}

func (m *MockFamilyService) Family(ctx context.Context, actorID string) (model.FamilyGroup, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).(model.FamilyGroup), args.Error(1)
}

func (m *MockFamilyService) CreateFamily(ctx context.Context, actorID string) (model.FamilyGroup, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).(model.FamilyGroup), args.Error(1)
}

func (m *MockFamilyService) Invite(ctx context.Context, actorID, email string) (service.InviteResult, error) {
	args := m.Called(ctx, actorID, email)
	return args.Get(0).(service.InviteResult), args.Error(1)
}

func (m *MockFamilyService) Notifications(ctx context.Context, actorID string) ([]model.Notification, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockFamilyService) Respond(ctx context.Context, actorID, notificationID string, accept bool) (model.Notification, error) {
	args := m.Called(ctx, actorID, notificationID, accept)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *MockFamilyService) Leave(ctx context.Context, actorID string) error {
	args := m.Called(ctx, actorID)
	return args.Error(0)
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

var testNow = time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)

// newContext builds an echo context for actor with an optional JSON body.
func newContext(method, target, body, actor string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	if actor != "" {
		c.Set(actorKey, actor)
	}
	return c, rec
}
