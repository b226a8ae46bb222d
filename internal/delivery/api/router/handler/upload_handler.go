package handler

import (
	"log/slog"
	"net/http"

	"market/internal/delivery/api/response"
	deliverycontext "market/internal/delivery/context"
	domainerrors "market/internal/domain/errors"
	"market/internal/errors"
	"market/internal/infra/upload"
	"market/internal/util"

	"github.com/labstack/echo/v4"
)

// uploadRequest holds the form fields sent next to the file.
type uploadRequest struct {
	Purpose string `form:"purpose" validate:"omitempty,oneof=item business avatar document"`
}

// UploadHandler accepts files from authenticated callers.
type UploadHandler struct {
	storage *upload.Storage
	logger  *slog.Logger
}

// NewUploadHandler is the constructor for UploadHandler, injected by Fx.
func NewUploadHandler(storage *upload.Storage, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		storage: storage,
		logger:  logger,
	}
}

// Upload stores the multipart field "file" and returns where it is served.
func (h *UploadHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := deliverycontext.PrincipalFromContext(ctx).RequireAuthenticated()
	if err != nil {
		return err
	}

	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrValidation.WithDetails("invalid upload form")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return domainerrors.ErrInvalidFile.WithDetails("multipart field \"file\" is required")
	}
	src, err := header.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open uploaded file")
	}
	defer src.Close()

	stored, err := h.storage.Save(ctx, header.Filename, header.Size, src)
	if err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("File uploaded",
		slog.Any("userID", userID),
		slog.String("name", stored.Name),
		slog.String("purpose", req.Purpose),
		slog.String("size", util.FormatBytes(stored.Size)),
	)

	return response.Success(c, http.StatusCreated, stored)
}
