package apis

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type IEventService interface {
	Create(ctx context.Context, actorID, ownerID string, req model.EventCreateRequest) (model.EventView, error)
	Get(ctx context.Context, actorID, eventID string) (model.EventView, error)
	Update(ctx context.Context, actorID, eventID string, patch model.EventPatch) (model.EventView, error)
	Delete(ctx context.Context, actorID, eventID string) error
	List(ctx context.Context, actorID, ownerID string, from, to time.Time) ([]model.EventView, error)
	SharedWithMe(ctx context.Context, actorID string) ([]model.EventView, error)
}

type ISharingEngine interface {
	SetSharedWith(ctx context.Context, eventID string, targets []string, actorID string) (model.Event, error)
}

type EventAPI struct {
	events  IEventService
	sharing ISharingEngine
	loc     *time.Location
}

func NewEventAPI(events IEventService, sharing ISharingEngine, loc *time.Location) *EventAPI {
	return &EventAPI{
		events:  events,
		sharing: sharing,
		loc:     loc,
	}
}

func (a *EventAPI) Setup(g *echo.Group) {
	g.POST("/calendars/:owner_id/events", a.createEvent)
	g.GET("/calendars/:owner_id/events", a.listEvents)
	g.GET("/events/shared", a.listShared)
	g.GET("/events/:id", a.getEvent)
	g.PATCH("/events/:id", a.updateEvent)
	g.DELETE("/events/:id", a.deleteEvent)
	g.PUT("/events/:id/share", a.shareEvent)
}

func (a *EventAPI) createEvent(c echo.Context) error {

	var req model.EventCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	ownerID := ownerParam(c, "owner_id")
	view, err := a.events.Create(c.Request().Context(), ActorID(c), ownerID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusCreated,
		model.BaseResponse{
			Data:    view,
			Message: "created",
		},
	)
}

// listEvents returns events starting in [from, to). Both bounds are required.
func (a *EventAPI) listEvents(c echo.Context) error {

	from, err := parseTime(c.QueryParam("from"), a.loc)
	if err != nil {
		return respondError(c, fieldError("from", "must be an RFC 3339 time or YYYY-MM-DD date"))
	}
	to, err := parseTime(c.QueryParam("to"), a.loc)
	if err != nil {
		return respondError(c, fieldError("to", "must be an RFC 3339 time or YYYY-MM-DD date"))
	}

	ownerID := ownerParam(c, "owner_id")
	views, err := a.events.List(c.Request().Context(), ActorID(c), ownerID, from, to)
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

func (a *EventAPI) listShared(c echo.Context) error {

	views, err := a.events.SharedWithMe(c.Request().Context(), ActorID(c))
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

func (a *EventAPI) getEvent(c echo.Context) error {

	view, err := a.events.Get(c.Request().Context(), ActorID(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    view,
			Message: "success",
		},
	)
}

func (a *EventAPI) updateEvent(c echo.Context) error {

	var patch model.EventPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, err)
	}

	view, err := a.events.Update(c.Request().Context(), ActorID(c), c.Param("id"), patch)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    view,
			Message: "updated",
		},
	)
}

func (a *EventAPI) deleteEvent(c echo.Context) error {

	err := a.events.Delete(c.Request().Context(), ActorID(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Message: "deleted",
		},
	)
}

func (a *EventAPI) shareEvent(c echo.Context) error {

	var req model.ShareRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	event, err := a.sharing.SetSharedWith(c.Request().Context(), c.Param("id"), req.SharedWith, ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    event,
			Message: "updated",
		},
	)
}
