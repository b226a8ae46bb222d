package middleware

import (
	"context"
	"time"

	domainerrors "market/internal/domain/errors"
	"market/internal/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Timeout bounds every request by d. Handlers that fail because the deadline
// passed are reported as ErrRequestTimeout.
func Timeout(d time.Duration) echo.MiddlewareFunc {
	return echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
		Timeout: d,
		ErrorHandler: func(err error, c echo.Context) error {
			if errors.Is(err, context.DeadlineExceeded) {
				return domainerrors.ErrRequestTimeout.WrapMessage(c.Request().URL.Path)
			}

			return err
		},
	})
}
