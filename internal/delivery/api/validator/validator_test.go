package validator

import (
	"testing"

	domainerrors "market/internal/domain/errors"
	"market/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadForm struct {
	Purpose string `validate:"omitempty,oneof=item business"`
	Size    int    `validate:"gte=1"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&uploadForm{Purpose: "item", Size: 1}))
	assert.NoError(t, v.Validate(&uploadForm{Size: 3}))

	err := v.Validate(&uploadForm{Purpose: "avatar"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	info := domainerrors.Info(err)
	assert.Equal(t, "Purpose failed oneof=item business; Size failed gte=1", info.Details)

	err = v.Validate("not a struct")
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}
