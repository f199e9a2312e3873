package apis

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"family-calendar-backend/cmd/family-calendar/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type IFamilyService interface {
	Family(ctx context.Context, actorID string) (model.FamilyGroup, error)
	CreateFamily(ctx context.Context, actorID string) (model.FamilyGroup, error)
	Invite(ctx context.Context, actorID, email string) (service.InviteResult, error)
	Notifications(ctx context.Context, actorID string) ([]model.Notification, error)
	Respond(ctx context.Context, actorID, notificationID string, accept bool) (model.Notification, error)
	Leave(ctx context.Context, actorID string) error
}

type FamilyAPI struct {
	families IFamilyService
}

func NewFamilyAPI(families IFamilyService) *FamilyAPI {
	return &FamilyAPI{
		families: families,
	}
}

func (a *FamilyAPI) Setup(g *echo.Group) {
	g.GET("/family", a.getFamily)
	g.POST("/family", a.createFamily)
	g.POST("/family/invite", a.invite)
	g.POST("/family/leave", a.leave)
	g.GET("/notifications", a.listNotifications)
	g.POST("/notifications/:id/accept", a.respond(true))
	g.POST("/notifications/:id/decline", a.respond(false))
}

func (a *FamilyAPI) getFamily(c echo.Context) error {

	group, err := a.families.Family(c.Request().Context(), ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    group,
			Message: "success",
		},
	)
}

func (a *FamilyAPI) createFamily(c echo.Context) error {

	group, err := a.families.CreateFamily(c.Request().Context(), ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusCreated,
		model.BaseResponse{
			Data:    group,
			Message: "created",
		},
	)
}

func (a *FamilyAPI) invite(c echo.Context) error {

	var req model.InviteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	result, err := a.families.Invite(c.Request().Context(), ActorID(c), req.Email)
	if err != nil {
		return respondError(c, err)
	}

	status := http.StatusAccepted
	if result.Joined {
		status = http.StatusOK
	}

	return c.JSON(
		status,
		model.BaseResponse{
			Data:    result,
			Message: "success",
		},
	)
}

func (a *FamilyAPI) leave(c echo.Context) error {

	err := a.families.Leave(c.Request().Context(), ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Message: "left family",
		},
	)
}

func (a *FamilyAPI) listNotifications(c echo.Context) error {

	notifications, err := a.families.Notifications(c.Request().Context(), ActorID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Data:    notifications,
			Message: "success",
		},
	)
}

func (a *FamilyAPI) respond(accept bool) echo.HandlerFunc {
	return func(c echo.Context) error {

		n, err := a.families.Respond(c.Request().Context(), ActorID(c), c.Param("id"), accept)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(
			http.StatusOK,
			model.BaseResponse{
				Data:    n,
				Message: string(n.Status),
			},
		)
	}
}
