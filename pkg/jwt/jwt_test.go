package jwt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remasterhq/remaster/pkg/jwt"
)

type testClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("with valid signing key", func(t *testing.T) {
		service, err := jwt.New("secret")
		require.NoError(t, err)
		require.NotNil(t, service)
	})

	t.Run("with empty signing key", func(t *testing.T) {
		service, err := jwt.New("")
		require.ErrorIs(t, err, jwt.ErrMissingSigningKey)
		require.Nil(t, service)
	})
}

func TestGenerateParse(t *testing.T) {
	t.Parallel()

	service, err := jwt.New("secret")
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		original := testClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: time.Now().Add(time.Hour).Unix(),
				IssuedAt:  time.Now().Unix(),
			},
			UserID: 42,
		}

		token, err := service.Generate(original)
		require.NoError(t, err)
		require.Len(t, strings.Split(token, "."), 3)

		var parsed testClaims
		require.NoError(t, service.Parse(token, &parsed))
		assert.Equal(t, original.UserID, parsed.UserID)
		assert.Equal(t, original.ExpiresAt, parsed.ExpiresAt)
	})

	t.Run("nil claims", func(t *testing.T) {
		token, err := service.Generate(nil)
		require.ErrorIs(t, err, jwt.ErrMissingClaims)
		require.Empty(t, token)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := service.Generate(testClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: time.Now().Add(-time.Minute).Unix(),
			},
			UserID: 42,
		})
		require.NoError(t, err)

		var parsed testClaims
		err = service.Parse(token, &parsed)
		require.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other, err := jwt.New("other-secret")
		require.NoError(t, err)

		token, err := service.Generate(testClaims{UserID: 42})
		require.NoError(t, err)

		var parsed testClaims
		err = other.Parse(token, &parsed)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("malformed token", func(t *testing.T) {
		var parsed testClaims
		require.ErrorIs(t, service.Parse("not-a-token", &parsed), jwt.ErrInvalidToken)
		require.ErrorIs(t, service.Parse("a.b", &parsed), jwt.ErrInvalidToken)
	})

	t.Run("tampered claims", func(t *testing.T) {
		token, err := service.Generate(testClaims{UserID: 42})
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		parts[1] = parts[1][:len(parts[1])-2] + "xx"
		var parsed testClaims
		err = service.Parse(strings.Join(parts, "."), &parsed)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})
}
