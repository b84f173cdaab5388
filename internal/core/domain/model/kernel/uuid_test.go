package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("should create unique valid UUIDs", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		require.NoError(t, id1.Validate())
		assert.NotEqual(t, uuid.Nil.String(), id1.String())
		assert.False(t, id1.IsEqual(id2))
	})
}

func TestUUIDFromString(t *testing.T) {
	validUUID := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("should parse canonical form", func(t *testing.T) {
		id, err := kernel.UUIDFromString(validUUID)

		require.NoError(t, err)
		assert.Equal(t, validUUID, id.String())
	})

	t.Run("should accept urn prefix", func(t *testing.T) {
		id, err := kernel.UUIDFromString("urn:uuid:" + validUUID)

		require.NoError(t, err)
		assert.Equal(t, validUUID, id.String())
	})

	t.Run("should reject garbage as validation error", func(t *testing.T) {
		_, err := kernel.UUIDFromString("BK123")

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "invalid UUID format")
	})

	t.Run("should reject the nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromString(uuid.Nil.String())

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestUUIDFromGoogle(t *testing.T) {
	g := uuid.New()

	id, err := kernel.UUIDFromGoogle(g)

	require.NoError(t, err)
	assert.Equal(t, g, id.Google())

	_, err = kernel.UUIDFromGoogle(uuid.Nil)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestUUID_Validate(t *testing.T) {
	var zero kernel.UUID

	require.ErrorIs(t, zero.Validate(), kernel.ErrUUIDIsNotConstructed)
	assert.True(t, zero.IsEqual(kernel.UUID{}))
}

func TestUUIDPtr(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, kernel.UUIDPtr(nil))
		assert.Nil(t, kernel.GooglePtr(nil))
	})

	t.Run("nil uuid value becomes nil", func(t *testing.T) {
		n := uuid.Nil
		assert.Nil(t, kernel.UUIDPtr(&n))
	})

	t.Run("round trip", func(t *testing.T) {
		g := uuid.New()

		id := kernel.UUIDPtr(&g)
		require.NotNil(t, id)
		back := kernel.GooglePtr(id)
		require.NotNil(t, back)
		assert.Equal(t, g, *back)
	})
}
