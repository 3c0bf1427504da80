package middlewares

import (
	"fmt"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RecoveryMiddleware turns a panic into a 500 through the error handler.
func RecoveryMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := make([]byte, 4<<10)
					stack = stack[:runtime.Stack(stack, false)]
					logrus.WithField("stack", string(stack)).Errorf("Panic recovered: %v", r)
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(c)
		}
	}
}
