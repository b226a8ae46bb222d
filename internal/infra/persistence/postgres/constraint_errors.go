package postgres

import (
	"strings"

	domainerrors "market/internal/domain/errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// translateError converts driver errors into domain errors. TranslateError must
// be enabled on the gorm config for the dialect-specific sentinels to appear.
func translateError(err error, action string) error {
	switch {
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrDuplicateResource.WrapMessage(action)
	case isForeignKeyConstraintViolation(err):
		return domainerrors.ErrValidation.WithDetails("referenced record does not exist")
	case isCheckConstraintViolation(err):
		return domainerrors.ErrValidation.WithDetails("value violates a table constraint")
	case isNotNullConstraintViolation(err):
		return domainerrors.ErrValidation.WithDetails("missing required field")
	default:
		return domainerrors.NewDatabaseExecuteError(err, action)
	}
}

// translateDeleteError reads a foreign key violation as the target still being
// referenced. Any other failure is handled by translateError.
func translateDeleteError(err error, action string) error {
	if isForeignKeyConstraintViolation(err) {
		return domainerrors.ErrResourceInUse.WrapMessage(action)
	}

	return translateError(err, action)
}

func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

func isNotNullConstraintViolation(err error) bool {
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "null value") ||
		strings.Contains(errMsg, "not null constraint") ||
		strings.Contains(errMsg, "23502") // PostgreSQL not_null_violation error code
}

func isCheckConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrCheckConstraintViolated)
}
