package controllers

import (
	"context"
	"net/http"

	"github.com/krushndayshmookh/krushn-calendar/middlewares"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/labstack/echo/v4"
)

type Exporter interface {
	Export(ctx context.Context, user *models.User) (services.ExportResult, error)
}

type ExportController struct {
	exporter Exporter
}

func NewExportController(exporter Exporter) *ExportController {
	return &ExportController{exporter: exporter}
}

func (ec *ExportController) Export(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	result, err := ec.exporter.Export(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}
