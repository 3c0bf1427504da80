package routes

import (
	"net/http"

	"github.com/krushndayshmookh/krushn-calendar/middlewares"
	"github.com/labstack/echo/v4"
)

// RegisterAPIRoutes mounts the JSON API. Authentication is attached per
// resource group so unknown /api paths still answer 404.
func RegisterAPIRoutes(api *echo.Group, h Handlers) {
	requireAuth := middlewares.NewAuthMiddleware(h.Authenticator).RequireAuth()

	events := api.Group("/events", requireAuth)
	events.GET("", h.Events.List)
	events.POST("", h.Events.Create)
	events.PUT("/:id", h.Events.Update)
	events.DELETE("/:id", h.Events.Delete)
	events.POST("/:id/rsvp", h.Events.Rsvp)

	categories := api.Group("/categories", requireAuth)
	categories.GET("", h.Categories.List)
	categories.POST("", h.Categories.Create)
	categories.DELETE("/:id", h.Categories.Delete)

	api.POST("/export", h.Export.Export, requireAuth)

	if h.Auth != nil {
		api.GET("/auth/google", h.Auth.GoogleLogin)
		api.GET("/auth/google/callback", h.Auth.GoogleCallback)
		api.GET("/auth/me", h.Auth.Me, requireAuth)
		api.GET("/auth/logout", h.Auth.Logout)
	}

	api.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	})
}
