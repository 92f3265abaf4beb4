package session

import (
	"testing"
	"time"

	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/pkg/kvstore"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return s
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("subject and expiry", func(t *testing.T) {
		c, err := ParseClaims(signed(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()}))
		require.NoError(t, err)
		assert.Equal(t, "user-1", c.Subject)
		assert.True(t, exp.Equal(c.ExpiresAt))
		assert.False(t, c.Expired(exp.Add(-time.Second)))
		assert.True(t, c.Expired(exp.Add(time.Second)))
	})

	t.Run("no expiry never expires", func(t *testing.T) {
		c, err := ParseClaims(signed(t, jwt.MapClaims{"sub": "user-1"}))
		require.NoError(t, err)
		assert.True(t, c.ExpiresAt.IsZero())
		assert.False(t, c.Expired(time.Now()))
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := ParseClaims("not-a-jwt")
		assert.Error(t, err)
	})
}

func TestTokenStoreClaims(t *testing.T) {
	ts, err := NewTokenStore(kvstore.NewMemoryStore(), logger.NewNopLogger())
	require.NoError(t, err)

	_, err = ts.Claims()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, ts.Set(signed(t, jwt.MapClaims{"sub": "abc"})))
	c, err := ts.Claims()
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Subject)
}
