package middlewares

import (
	"errors"
	"net/http"

	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders every error as {"error": message} with the status
// its kind maps to. Server-side failures are logged.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := classify(err)
		if status >= http.StatusInternalServerError {
			logrus.WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
				"status": status,
			}).WithError(err).Error("Request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"error": message})
		}
		if err != nil {
			logrus.WithError(err).Error("Failed to write error response")
		}
	}
}

func classify(err error) (int, string) {
	var (
		httpErr        *echo.HTTPError
		validationErr  *services.ValidationError
		remoteErr      *services.RemoteError
		persistenceErr *services.PersistenceError
	)

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, services.ErrNotAttendee):
		return http.StatusBadRequest, services.ErrNotAttendee.Error()
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &remoteErr):
		return http.StatusInternalServerError, remoteErr.Err.Error()
	case errors.As(err, &persistenceErr):
		return http.StatusInternalServerError, persistenceErr.Err.Error()
	case errors.As(err, &httpErr):
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
