package routes

import (
	"net/http"
	"strings"

	"github.com/krushndayshmookh/krushn-calendar/controllers"
	"github.com/krushndayshmookh/krushn-calendar/middlewares"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles everything the router serves. Auth is nil in passphrase
// mode.
type Handlers struct {
	Authenticator middlewares.Authenticator
	Events        *controllers.EventController
	Categories    *controllers.CategoryController
	Export        *controllers.ExportController
	Health        *controllers.HealthController
	Auth          *controllers.AuthController
	StaticDir     string
}

// SetupRouter configures the server's middleware and routes.
func SetupRouter(h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middlewares.ErrorHandler()

	e.Use(middlewares.RecoveryMiddleware())
	e.Use(middlewares.RequestLogger())
	e.Use(middleware.CORS())

	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	RegisterAPIRoutes(e.Group("/api"), h)

	if h.StaticDir != "" {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  h.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/api")
			},
		}))
	} else {
		e.GET("/", func(c echo.Context) error {
			return c.String(http.StatusOK, "Krushn Calendar API is running")
		})
	}
	return e
}
