package apis

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Pinger is any extra dependency the health check should probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthCheckAPI struct {
	db     *gorm.DB
	extras map[string]Pinger
}

func NewHealthCheckAPI(db *gorm.DB, extras map[string]Pinger) *HealthCheckAPI {
	return &HealthCheckAPI{
		db:     db,
		extras: extras,
	}
}

func (a *HealthCheckAPI) Setup(g *echo.Group) {
	g.GET("/healthz", a.healthCheck)
}

func (a *HealthCheckAPI) healthCheck(c echo.Context) error {

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	db, err := a.db.DB()
	if err != nil {
		return c.JSON(
			http.StatusServiceUnavailable,
			model.BaseResponse{
				Message: err.Error(),
			},
		)
	}

	err = db.PingContext(ctx)
	if err != nil {
		return c.JSON(
			http.StatusServiceUnavailable,
			model.BaseResponse{
				Message: "database: " + err.Error(),
			},
		)
	}

	for name, p := range a.extras {
		if err := p.Ping(ctx); err != nil {
			return c.JSON(
				http.StatusServiceUnavailable,
				model.BaseResponse{
					Message: name + ": " + err.Error(),
				},
			)
		}
	}

	return c.JSON(
		http.StatusOK,
		model.BaseResponse{
			Message: "healthy",
		},
	)
}
