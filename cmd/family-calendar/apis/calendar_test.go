package apis

import (
	"encoding/json"
	"family-calendar-backend/cmd/family-calendar/model"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCalendarAPI() (*CalendarAPI, *MockCalendarService, *MockEventService) {
	calendars := new(MockCalendarService)
	events := new(MockEventService)
	return NewCalendarAPI(calendars, events, fixedClock(testNow)), calendars, events
}

func TestCalendarAPI_MonthGrid_DefaultsToCurrentMonth(t *testing.T) {
	api, calendars, _ := newCalendarAPI()
	c, rec := newContext(http.MethodGet, "/api/v1/calendars/me/grid", "", "user-1")
	c.SetParamNames("owner_id")
	c.SetParamValues("me")

	calendars.On("MonthGrid", mock.Anything, "user-1", "user-1", 2024, time.March).
		Return(model.MonthGrid{Year: 2024, Month: time.March, Cells: make([]model.CalendarCell, model.GridCells)}, nil)

	err := api.monthGrid(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	calendars.AssertExpectations(t)
}

func TestCalendarAPI_MonthGrid_Query(t *testing.T) {
	api, calendars, _ := newCalendarAPI()
	c, rec := newContext(http.MethodGet, "/api/v1/calendars/owner/grid?year=2025&month=2", "", "user-1")
	c.SetParamNames("owner_id")
	c.SetParamValues("owner")

	calendars.On("MonthGrid", mock.Anything, "user-1", "owner", 2025, time.February).Return(model.MonthGrid{}, nil)

	_ = api.monthGrid(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	calendars.AssertExpectations(t)
}

func TestCalendarAPI_MonthGrid_BadQuery(t *testing.T) {
	api, calendars, _ := newCalendarAPI()
	c, rec := newContext(http.MethodGet, "/api/v1/calendars/owner/grid?year=next&month=x", "", "user-1")
	c.SetParamNames("owner_id")
	c.SetParamValues("owner")

	_ = api.monthGrid(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var response model.BaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response.Errors, "year")
	assert.Contains(t, response.Errors, "month")
	calendars.AssertNotCalled(t, "MonthGrid")
}

func TestCalendarAPI_Schedule(t *testing.T) {
	api, calendars, _ := newCalendarAPI()

	t.Run("agenda", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/v1/calendars/owner/schedule", "", "user-1")
		c.SetParamNames("owner_id")
		c.SetParamValues("owner")

		calendars.On("Schedule", mock.Anything, "user-1", "owner", (*time.Time)(nil), time.Time{}).
			Return([]model.EventView{}, nil).Once()

		_ = api.schedule(c)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("single day", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/v1/calendars/owner/schedule?day=2024-03-11", "", "user-1")
		c.SetParamNames("owner_id")
		c.SetParamValues("owner")

		day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
		calendars.On("Schedule", mock.Anything, "user-1", "owner", &day, time.Time{}).
			Return([]model.EventView{}, nil).Once()

		_ = api.schedule(c)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	calendars.AssertExpectations(t)
}

func TestCalendarAPI_Stats_Forbidden(t *testing.T) {
	api, calendars, _ := newCalendarAPI()
	c, rec := newContext(http.MethodGet, "/api/v1/calendars/owner/stats", "", "kid")
	c.SetParamNames("owner_id")
	c.SetParamValues("owner")

	calendars.On("Stats", mock.Anything, "kid", "owner").Return(model.Stats{}, model.ErrForbidden)

	_ = api.stats(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func exportViews() []model.EventView {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	return []model.EventView{{
		Event: model.Event{
			ID:                "ev-1",
			UserID:            "owner",
			Title:             "Piano lesson",
			StartDate:         start,
			EndDate:           &end,
			Status:            model.Scheduled,
			IsRecurring:       true,
			RecurrencePattern: "weekly",
			CreatedAt:         start,
			UpdatedAt:         start,
		},
		Type: model.TypeRef{State: model.TypeResolved, Name: "cita"},
	}}
}

func TestCalendarAPI_ExportICS(t *testing.T) {
	api, _, events := newCalendarAPI()
	c, rec := newContext(http.MethodGet, "/api/v1/calendars/owner/export.ics", "", "owner")
	c.SetParamNames("owner_id")
	c.SetParamValues("owner")

	events.On("List", mock.Anything, "owner", "owner", testNow.AddDate(-1, 0, 0), testNow.AddDate(1, 0, 0)).
		Return(exportViews(), nil)

	err := api.exportICS(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "Piano lesson")
	assert.Contains(t, body, "FREQ=WEEKLY")
	events.AssertExpectations(t)
}

func TestCalendarAPI_ExportCSV(t *testing.T) {
	api, _, events := newCalendarAPI()
	c, rec := newContext(http.MethodGet, "/api/v1/calendars/owner/export.csv?from=2024-03-01&to=2024-04-01", "", "owner")
	c.SetParamNames("owner_id")
	c.SetParamValues("owner")

	events.On("List", mock.Anything, "owner", "owner",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)).
		Return(exportViews(), nil)

	err := api.exportCSV(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "calendar.csv")
	assert.Contains(t, rec.Body.String(), "Piano lesson")
	events.AssertExpectations(t)
}
