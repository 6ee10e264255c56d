package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		hash, err := HashPassword("hunter2")
		require.NoError(t, err)
		require.True(t, len(hash) > 0)

		ok, err := VerifyPassword(hash, "hunter2")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		hash, err := HashPassword("hunter2")
		require.NoError(t, err)

		ok, err := VerifyPassword(hash, "hunter3")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("salted", func(t *testing.T) {
		a, err := HashPassword("hunter2")
		require.NoError(t, err)
		b, err := HashPassword("hunter2")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("malformed hash", func(t *testing.T) {
		ok, err := VerifyPassword("not-a-hash", "hunter2")
		require.Error(t, err)
		assert.False(t, ok)
	})
}
