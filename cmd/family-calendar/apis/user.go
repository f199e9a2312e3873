package apis

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type IProfileReader interface {
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	TouchLastSeen(ctx context.Context, id string, now time.Time) error
}

type IAccessControl interface {
	AllowedEditors(ctx context.Context, ownerID string) ([]string, error)
	SetAllowedEditors(ctx context.Context, ownerID string, editors []string) ([]string, error)
	EditableCalendars(ctx context.Context, actorID string) ([]model.Profile, error)
}

type UserAPI struct {
	profiles IProfileReader
	access   IAccessControl
	clock    Clock
}

func NewUserAPI(profiles IProfileReader, access IAccessControl, clock Clock) *UserAPI {
	return &UserAPI{
		profiles: profiles,
		access:   access,
		clock:    clock,
	}
}

func (a *UserAPI) Setup(g *echo.Group) {
	g.GET("/me", a.me)
	g.GET("/me/editable-calendars", a.editableCalendars)
	g.GET("/users/:id/editors", a.getEditors)
	g.PUT("/users/:id/editors", a.setEditors)
}

func (a *UserAPI) me(c echo.Context) error {

	ctx := c.Request().Context()
	actorID := ActorID(c)

	err := a.profiles.TouchLastSeen(ctx, actorID, a.clock.Now())
	if err != nil {
		return respondError(c, err)
	}

	profile, err := a.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    profile,
			Message: "success",
		},
	)
}

// getEditors and setEditors act only on the actor's own allow-list.
func (a *UserAPI) getEditors(c echo.Context) error {

	ownerID := ownerParam(c, "id")
	if ownerID != ActorID(c) {
		return respondError(c, fmt.Errorf("editors of %s: %w", ownerID, model.ErrForbidden))
	}

	editors, err := a.access.AllowedEditors(c.Request().Context(), ownerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    editors,
			Message: "success",
		},
	)
}

func (a *UserAPI) setEditors(c echo.Context) error {

	ownerID := ownerParam(c, "id")
	if ownerID != ActorID(c) {
		return respondError(c, fmt.Errorf("editors of %s: %w", ownerID, model.ErrForbidden))
	}

	var req model.EditorsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	editors, err := a.access.SetAllowedEditors(c.Request().Context(), ownerID, req.AllowedEditors)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    editors,
			Message: "updated",
		},
	)
}

func (a *UserAPI) editableCalendars(c echo.Context) error {

	owners, err := a.access.EditableCalendars(c.Request().Context(), ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    owners,
			Message: "success",
		},
	)
}
