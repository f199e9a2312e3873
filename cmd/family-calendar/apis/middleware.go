package apis

import (
	"family-calendar-backend/cmd/family-calendar/model"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	actorKey = "actor_id"
	errorKey = "request_error"
)

// ActorAuth trusts the auth provider's HS256 token and exposes its subject
// as the acting user id. The service never authenticates users itself.
func ActorAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return c.JSON(
					http.StatusUnauthorized,
					model.BaseResponse{
						Message: "missing bearer token",
					},
				)
			}

			var claims jwt.RegisteredClaims
			_, err := jwt.ParseWithClaims(
				raw,
				&claims,
				func(*jwt.Token) (any, error) {
					return secret, nil
				},
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			)
			if err != nil || claims.Subject == "" {
				return c.JSON(
					http.StatusUnauthorized,
					model.BaseResponse{
						Message: "invalid token",
					},
				)
			}

			c.Set(actorKey, claims.Subject)
			return next(c)
		}
	}
}

func ActorID(c echo.Context) string {
	id, _ := c.Get(actorKey).(string)
	return id
}

// ownerParam reads the :owner_id path parameter, with "me" meaning the actor.
func ownerParam(c echo.Context, name string) string {
	id := c.Param(name)
	if id == "me" {
		return ActorID(c)
	}
	return id
}

func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("actor_id", ActorID(c)),
			}
			if failure, ok := c.Get(errorKey).(error); ok {
				log.Error("request", append(fields, zap.Error(failure))...)
				return nil
			}
			log.Info("request", fields...)

			return nil
		}
	}
}
