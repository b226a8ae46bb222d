package graph

import (
	"context"
	"log/slog"
	"net/http"

	deliverycontext "market/internal/delivery/context"
	domainerrors "market/internal/domain/errors"
	"market/internal/errors"

	"github.com/graphql-go/graphql/gqlerrors"
)

// graphError is the error handed back to graphql-go. It must be returned
// directly from a resolver for its extensions to reach the response.
type graphError struct {
	message string
	code    string
	details any
}

var _ gqlerrors.ExtendedError = (*graphError)(nil)

func (e *graphError) Error() string {
	return e.message
}

func (e *graphError) Extensions() map[string]any {
	ext := map[string]any{"code": e.code}
	if e.details != nil {
		ext["details"] = e.details
	}

	return ext
}

// toGraphError converts a use case error into a client-facing error entry.
// Faults without an application error code are logged and reported as
// INTERNAL_ERROR with a generic message.
func toGraphError(ctx context.Context, logger *slog.Logger, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = domainerrors.ErrRequestTimeout
	}

	info := domainerrors.Info(err)
	if status := domainerrors.Resolve(err).HTTPCode(); status >= http.StatusInternalServerError {
		deliverycontext.GetLoggerOrDefault(ctx, logger).Error("GraphQL resolver failed",
			slog.String("code", info.Code),
			slog.Any("error", err),
		)
	}

	return &graphError{message: info.Message, code: info.Code, details: info.Details}
}

// invalidArg reports a malformed argument as a validation failure.
func invalidArg(name, reason string) error {
	return domainerrors.ErrValidation.WithDetails(name + ": " + reason)
}
