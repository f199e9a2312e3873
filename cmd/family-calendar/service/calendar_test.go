package service

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendarEnv(t *testing.T) *testEnv {
	env := newTestEnv(t, sweepTime)
	env.store.addProfile(model.Profile{ID: "owner", FamilyID: strPtr("fam")})
	env.store.addProfile(model.Profile{ID: "kid", FamilyID: strPtr("fam")})
	seedTypes(env.store, "owner")

	env.store.addEvent(pastEvent("A", "t-reunion", model.Scheduled))
	env.store.addEvent(pastEvent("B", "t-recordatorio", model.Scheduled))

	old := pastEvent("old-overdue", "t-cita", model.Overdue)
	old.StartDate = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	old.EndDate = nil
	env.store.addEvent(old)

	env.store.addEvent(model.Event{ID: "later-today", UserID: "owner", Title: "Dinner", StartDate: at(10, 20), Status: model.Scheduled, SharedWith: []string{model.ShareFamily}})
	env.store.addEvent(model.Event{ID: "tomorrow", UserID: "owner", Title: "School", StartDate: at(11, 8), Status: model.Scheduled})
	env.store.addEvent(model.Event{ID: "april", UserID: "owner", Title: "Holiday", StartDate: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), Status: model.Scheduled})
	return env
}

func TestCalendarService_Schedule_AgendaSweepsFirst(t *testing.T) {
	env := calendarEnv(t)

	views, err := env.calendars.Schedule(context.Background(), "owner", "owner", nil, time.Time{})
	require.NoError(t, err)

	ids := []string{}
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	// The sweep ran before the read: A is overdue and B completed, and both
	// still lead the agenda because they started today.
	assert.Equal(t, []string{"A", "B", "later-today", "tomorrow", "april", "old-overdue"}, ids)
	assert.Equal(t, model.Overdue, views[0].Status)
	assert.Equal(t, model.Completed, views[1].Status)
}

func TestCalendarService_Schedule_Day(t *testing.T) {
	env := calendarEnv(t)
	day := at(11, 0)

	views, err := env.calendars.Schedule(context.Background(), "owner", "owner", &day, time.Time{})

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "tomorrow", views[0].ID)
}

func TestCalendarService_Schedule_FutureReferenceStillShowsOverdue(t *testing.T) {
	env := calendarEnv(t)

	views, err := env.calendars.Schedule(context.Background(), "owner", "owner", nil, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	ids := []string{}
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	// Overdue events are fetched whatever month is displayed.
	assert.Equal(t, []string{"A", "april", "old-overdue"}, ids)
}

func TestCalendarService_Schedule_FamilyMemberSeesShared(t *testing.T) {
	env := calendarEnv(t)

	views, err := env.calendars.Schedule(context.Background(), "kid", "owner", nil, time.Time{})

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "later-today", views[0].ID)
}

func TestCalendarService_Schedule_ViewerDoesNotSweep(t *testing.T) {
	env := calendarEnv(t)

	for _, actor := range []string{"kid", "stranger"} {
		_, err := env.calendars.Schedule(context.Background(), actor, "owner", nil, time.Time{})
		require.NoError(t, err)
	}

	assert.Equal(t, model.Scheduled, env.store.events["A"].Status)
	assert.Equal(t, model.Scheduled, env.store.events["B"].Status)
}

func TestCalendarService_Schedule_DelegatedEditorSweeps(t *testing.T) {
	env := calendarEnv(t)
	owner := env.store.profiles["owner"]
	owner.AllowedEditors = []string{"editor"}
	env.store.addProfile(owner)

	_, err := env.calendars.Schedule(context.Background(), "editor", "owner", nil, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, model.Overdue, env.store.events["A"].Status)
	assert.Equal(t, model.Completed, env.store.events["B"].Status)
}

func TestCalendarService_MonthGrid(t *testing.T) {
	env := calendarEnv(t)

	grid, err := env.calendars.MonthGrid(context.Background(), "owner", "owner", 2024, time.March)

	require.NoError(t, err)
	require.Len(t, grid.Cells, model.GridCells)
	tenth := grid.Cells[14]
	assert.Equal(t, 3, tenth.EventCount)
	assert.Equal(t, 1, grid.Cells[15].EventCount)

	_, err = env.calendars.MonthGrid(context.Background(), "owner", "owner", 2024, 13)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCalendarService_MonthGrid_FiltersInvisible(t *testing.T) {
	env := calendarEnv(t)

	grid, err := env.calendars.MonthGrid(context.Background(), "kid", "owner", 2024, time.March)

	require.NoError(t, err)
	assert.Equal(t, 1, grid.Cells[14].EventCount)
	assert.Equal(t, 0, grid.Cells[15].EventCount)
}

func TestCalendarService_Stats(t *testing.T) {
	env := calendarEnv(t)

	stats, err := env.calendars.Stats(context.Background(), "owner", "owner")

	require.NoError(t, err)
	assert.Equal(t, model.Stats{Completed: 1, Upcoming: 3, Overdue: 2}, stats)
}

func TestCalendarService_Stats_RequiresEditRights(t *testing.T) {
	env := calendarEnv(t)

	_, err := env.calendars.Stats(context.Background(), "kid", "owner")

	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Equal(t, model.Scheduled, env.store.events["A"].Status, "no sweep without access")
}
