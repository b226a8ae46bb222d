package middleware

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "market/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// Authenticator resolves a raw bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (deliverycontext.Principal, error)
}

// PrincipalMiddleware resolves the Authorization header once per request and
// stores the principal in the request context. A missing, malformed or
// rejected credential leaves the request anonymous; handlers decide whether
// that is acceptable.
type PrincipalMiddleware struct {
	auth   Authenticator
	logger *slog.Logger
}

// NewPrincipalMiddleware is the constructor for PrincipalMiddleware.
func NewPrincipalMiddleware(auth Authenticator, logger *slog.Logger) *PrincipalMiddleware {
	return &PrincipalMiddleware{auth: auth, logger: logger}
}

func (m *PrincipalMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return next(c)
		}

		ctx := c.Request().Context()
		principal, err := m.auth.Authenticate(ctx, token)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(ctx, m.logger).Debug("Rejected bearer credential", slog.Any("error", err))

			return next(c)
		}

		c.SetRequest(c.Request().WithContext(deliverycontext.WithPrincipal(ctx, principal)))

		return next(c)
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}
