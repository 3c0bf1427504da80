package controllers

import (
	"context"
	"net/http"

	"github.com/krushndayshmookh/krushn-calendar/middlewares"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/labstack/echo/v4"
)

type CategoryService interface {
	List(ctx context.Context, user *models.User) ([]models.Category, error)
	Create(ctx context.Context, user *models.User, input services.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, user *models.User, rawID string) error
}

type categoryRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsDefault bool   `json:"isDefault"`
}

type CategoryController struct {
	categories CategoryService
}

func NewCategoryController(categories CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

func (cc *CategoryController) List(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	categories, err := cc.categories.List(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

func (cc *CategoryController) Create(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	category, err := cc.categories.Create(c.Request().Context(), user, services.CategoryInput{
		Name:      req.Name,
		Color:     req.Color,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

func (cc *CategoryController) Delete(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := cc.categories.Delete(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted"})
}
