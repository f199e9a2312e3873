package apis

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type ITypeRegistry interface {
	ListTypes(ctx context.Context, ownerID string) ([]model.EventType, error)
	GetType(ctx context.Context, id, ownerID string) (model.EventType, error)
	CreateType(ctx context.Context, ownerID string, input model.EventType) (model.EventType, error)
	UpdateType(ctx context.Context, id string, patch model.EventTypePatch, ownerID string) (model.EventType, error)
	DeleteType(ctx context.Context, id, ownerID string) error
}

type IEditChecker interface {
	CanEdit(ctx context.Context, ownerID, actorID string) bool
}

// EventTypeAPI manages the actor's own event types. Delegated editors may
// read, but not change, the catalog of a calendar they can edit.
type EventTypeAPI struct {
	registry ITypeRegistry
	access   IEditChecker
}

func NewEventTypeAPI(registry ITypeRegistry, access IEditChecker) *EventTypeAPI {
	return &EventTypeAPI{
		registry: registry,
		access:   access,
	}
}

func (a *EventTypeAPI) Setup(g *echo.Group) {
	g.GET("/calendars/:owner_id/event-types", a.listOwnerEventTypes)
	g.GET("/event-types", a.listEventTypes)
	g.POST("/event-types", a.createEventType)
	g.GET("/event-types/:id", a.getEventType)
	g.PATCH("/event-types/:id", a.updateEventType)
	g.DELETE("/event-types/:id", a.deleteEventType)
}

func (a *EventTypeAPI) listEventTypes(c echo.Context) error {

	types, err := a.registry.ListTypes(c.Request().Context(), ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    types,
			Message: "success",
		},
	)
}

func (a *EventTypeAPI) listOwnerEventTypes(c echo.Context) error {

	ctx := c.Request().Context()
	ownerID := ownerParam(c, "owner_id")
	if !a.access.CanEdit(ctx, ownerID, ActorID(c)) {
		return respondError(c, fmt.Errorf("event types of %s: %w", ownerID, model.ErrForbidden))
	}

	types, err := a.registry.ListTypes(ctx, ownerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    types,
			Message: "success",
		},
	)
}

func (a *EventTypeAPI) createEventType(c echo.Context) error {

	var input model.EventType
	if err := c.Bind(&input); err != nil {
		return badRequest(c, err)
	}

	et, err := a.registry.CreateType(c.Request().Context(), ActorID(c), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusCreated,
		model.BaseResponse{
			Data:    et,
			Message: "created",
		},
	)
}

func (a *EventTypeAPI) getEventType(c echo.Context) error {

	et, err := a.registry.GetType(c.Request().Context(), c.Param("id"), ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    et,
			Message: "success",
		},
	)
}

func (a *EventTypeAPI) updateEventType(c echo.Context) error {

	var patch model.EventTypePatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, err)
	}

	et, err := a.registry.UpdateType(c.Request().Context(), c.Param("id"), patch, ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    et,
			Message: "updated",
		},
	)
}

func (a *EventTypeAPI) deleteEventType(c echo.Context) error {

	err := a.registry.DeleteType(c.Request().Context(), c.Param("id"), ActorID(c))
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
