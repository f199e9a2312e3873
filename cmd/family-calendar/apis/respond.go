package apis

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/model"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// respondError maps the model error taxonomy onto HTTP. Forbidden and
// not-found bodies are generic so they reveal nothing about other users' ids.
// Unclassified errors stay in the request log and never reach the body.
func respondError(c echo.Context, err error) error {

	var verr *model.ValidationError

	switch {
	case errors.Is(err, context.Canceled):
		// The client went away; there is nobody to answer.
		return nil
	case errors.As(err, &verr):
		return c.JSON(
			http.StatusUnprocessableEntity,
			model.BaseResponse{
				Message: model.ErrValidation.Error(),
				Errors:  verr.Fields,
			},
		)
	case errors.Is(err, model.ErrNotFound):
		return c.JSON(
			http.StatusNotFound,
			model.BaseResponse{
				Message: "not found",
			},
		)
	case errors.Is(err, model.ErrForbidden):
		return c.JSON(
			http.StatusForbidden,
			model.BaseResponse{
				Message: "access denied",
			},
		)
	case errors.Is(err, model.ErrConflict):
		return c.JSON(
			http.StatusConflict,
			model.BaseResponse{
				Message: err.Error(),
			},
		)
	case errors.Is(err, model.ErrTransient):
		c.Response().Header().Set("Retry-After", "5")
		return c.JSON(
			http.StatusServiceUnavailable,
			model.BaseResponse{
				Message: "temporarily unavailable, retry later",
			},
		)
	default:
		c.Set(errorKey, err)
		return c.JSON(
			http.StatusInternalServerError,
			model.BaseResponse{
				Message: "internal error",
			},
		)
	}
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(
		http.StatusBadRequest,
		model.BaseResponse{
			Message: err.Error(),
		},
	)
}

// parseTime accepts RFC 3339 timestamps or plain dates, the latter read as
// midnight in loc.
func parseTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, value, loc)
}

func fieldError(field, msg string) *model.ValidationError {
	v := model.NewValidationError()
	v.Add(field, msg)
	return v
}
