package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	db Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

func (hc *HealthController) Health(c echo.Context) error {
	if hc.db != nil {
		if err := hc.db.PingContext(c.Request().Context()); err != nil {
			logrus.WithError(err).Warn("Health check failed")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
