package errors

import (
	"net/http"

	"market/internal/errors"
)

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Business error code, e.g., "NOT_FOUND"
	Message string `json:"message"`           // User-friendly error message
	Details any    `json:"details,omitempty"` // Detailed error information (optional)
}

// Resolve returns the AppError in err's chain. Anything else is reported as
// ErrInternalError.
func Resolve(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr AppError
	if !errors.As(err, &appErr) {
		return false
	}

	return appErr.ErrorCode() == code
}

// Info builds the client-facing description of err. Details are dropped for
// server faults and for authentication or authorization failures.
func Info(err error) *ErrorInfo {
	appErr := Resolve(err)
	info := &ErrorInfo{
		Code:    appErr.ErrorCode(),
		Message: appErr.Message(),
	}

	status := appErr.HTTPCode()
	if status < http.StatusInternalServerError && status != http.StatusUnauthorized && status != http.StatusForbidden {
		if details := appErr.Details(); details != "" {
			info.Details = details
		}
	}

	return info
}
