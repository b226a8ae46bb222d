package persistence

import (
	"testing"

	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSet_CheckWritable(t *testing.T) {
	keys, err := ItemFields.CheckWritable(repository.Fields{"tags": []string{"a"}, "name": "x", "price": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "price", "tags"}, keys)

	_, err = ItemFields.CheckWritable(repository.Fields{"id": "x"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = UserFields.CheckWritable(repository.Fields{"created_at": "x"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestFieldSet_CheckSearchable(t *testing.T) {
	require.NoError(t, UserFields.CheckSearchable([]string{"email", "full_name"}))

	err := UserFields.CheckSearchable([]string{"password_hash"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	err = ItemFields.CheckSearchable(nil)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	assert.Error(t, TokenFields.CheckSearchable([]string{"token_hash"}))
}
