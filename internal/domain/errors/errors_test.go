package errors

import (
	"net/http"
	"testing"

	"market/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_IsMatchesByCode(t *testing.T) {
	err := ErrNotFound.WithDetails("user 42")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(ErrNotFound.WrapMessage("lookup"), ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Resource not found: user 42", err.Error())
}

func TestResolve(t *testing.T) {
	wrapped := errors.Wrap(ErrDuplicateResource.WithDetails("email"), "register")
	assert.Equal(t, "DUPLICATE_RESOURCE", Resolve(wrapped).ErrorCode())

	dbErr := NewDatabaseExecuteError(errors.New("connection reset"), "insert user")
	assert.Equal(t, "STORAGE_ERROR", Resolve(errors.Wrap(dbErr, "create")).ErrorCode())
	assert.Equal(t, http.StatusInternalServerError, Resolve(dbErr).HTTPCode())

	assert.Equal(t, ErrInternalError, Resolve(errors.New("boom")))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(ErrValidation.WithDetails("x"), "VALIDATION_ERROR"))
	assert.False(t, HasCode(errors.New("plain"), "VALIDATION_ERROR"))
}

func TestInfo_HidesDetailsForAuthAndServerErrors(t *testing.T) {
	info := Info(ErrValidation.WithDetails("price must not be negative"))
	assert.Equal(t, "VALIDATION_ERROR", info.Code)
	assert.Equal(t, "price must not be negative", info.Details)

	info = Info(ErrAuthorizationDenied.WithDetails("missing category:write"))
	assert.Nil(t, info.Details)

	info = Info(NewDatabaseExecuteError(errors.New("secret dsn"), "select"))
	assert.Equal(t, "STORAGE_ERROR", info.Code)
	assert.Nil(t, info.Details)
}
