package apis

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/feed"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type ICalendarService interface {
	Location() *time.Location
	MonthGrid(ctx context.Context, actorID, ownerID string, year int, month time.Month) (model.MonthGrid, error)
	Schedule(ctx context.Context, actorID, ownerID string, day *time.Time, reference time.Time) ([]model.EventView, error)
	Stats(ctx context.Context, actorID, ownerID string) (model.Stats, error)
}

type IEventLister interface {
	List(ctx context.Context, actorID, ownerID string, from, to time.Time) ([]model.EventView, error)
}

type Clock interface {
	Now() time.Time
}

// exportWindow is how far either side of now an export reaches when the
// caller gives no range.
const exportWindow = 1

type CalendarAPI struct {
	calendars ICalendarService
	events    IEventLister
	clock     Clock
}

func NewCalendarAPI(calendars ICalendarService, events IEventLister, clock Clock) *CalendarAPI {
	return &CalendarAPI{
		calendars: calendars,
		events:    events,
		clock:     clock,
	}
}

func (a *CalendarAPI) Setup(g *echo.Group) {
	g.GET("/calendars/:owner_id/grid", a.monthGrid)
	g.GET("/calendars/:owner_id/schedule", a.schedule)
	g.GET("/calendars/:owner_id/stats", a.stats)
	g.GET("/calendars/:owner_id/export.ics", a.exportICS)
	g.GET("/calendars/:owner_id/export.csv", a.exportCSV)
}

// monthGrid defaults year and month to the current ones.
func (a *CalendarAPI) monthGrid(c echo.Context) error {

	now := a.clock.Now().In(a.calendars.Location())
	year, month := now.Year(), int(now.Month())

	v := model.NewValidationError()
	if raw := c.QueryParam("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("year", "must be a number")
		}
		year = n
	}
	if raw := c.QueryParam("month"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("month", "must be a number")
		}
		month = n
	}
	if err := v.OrNil(); err != nil {
		return respondError(c, err)
	}

	grid, err := a.calendars.MonthGrid(c.Request().Context(), ActorID(c), ownerParam(c, "owner_id"), year, time.Month(month))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    grid,
			Message: "success",
		},
	)
}

// schedule returns one day when ?day is given, else the agenda around
// ?reference (default now).
func (a *CalendarAPI) schedule(c echo.Context) error {

	loc := a.calendars.Location()

	var day *time.Time
	if raw := c.QueryParam("day"); raw != "" {
		d, err := parseTime(raw, loc)
		if err != nil {
			return respondError(c, fieldError("day", "must be an RFC 3339 time or YYYY-MM-DD date"))
		}
		day = &d
	}

	var reference time.Time
	if raw := c.QueryParam("reference"); raw != "" {
		r, err := parseTime(raw, loc)
		if err != nil {
			return respondError(c, fieldError("reference", "must be an RFC 3339 time or YYYY-MM-DD date"))
		}
		reference = r
	}

	views, err := a.calendars.Schedule(c.Request().Context(), ActorID(c), ownerParam(c, "owner_id"), day, reference)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    views,
			Message: "success",
		},
	)
}

func (a *CalendarAPI) stats(c echo.Context) error {

	stats, err := a.calendars.Stats(c.Request().Context(), ActorID(c), ownerParam(c, "owner_id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    stats,
			Message: "success",
		},
	)
}

func (a *CalendarAPI) exportICS(c echo.Context) error {

	ownerID := ownerParam(c, "owner_id")
	views, err := a.exportEvents(c, ownerID)
	if err != nil {
		return respondError(c, err)
	}

	body := feed.ICS(fmt.Sprintf("calendar %s", ownerID), views, a.clock.Now())

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="calendar.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func (a *CalendarAPI) exportCSV(c echo.Context) error {

	views, err := a.exportEvents(c, ownerParam(c, "owner_id"))
	if err != nil {
		return respondError(c, err)
	}

	body, err := feed.CSV(views, a.calendars.Location())
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="calendar.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", body)
}

func (a *CalendarAPI) exportEvents(c echo.Context, ownerID string) ([]model.EventView, error) {
	loc := a.calendars.Location()
	now := a.clock.Now()
	from := now.AddDate(-exportWindow, 0, 0)
	to := now.AddDate(exportWindow, 0, 0)

	v := model.NewValidationError()
	if raw := c.QueryParam("from"); raw != "" {
		t, err := parseTime(raw, loc)
		if err != nil {
			v.Add("from", "must be an RFC 3339 time or YYYY-MM-DD date")
		}
		from = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := parseTime(raw, loc)
		if err != nil {
			v.Add("to", "must be an RFC 3339 time or YYYY-MM-DD date")
		}
		to = t
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	return a.events.List(c.Request().Context(), ActorID(c), ownerID, from, to)
}
