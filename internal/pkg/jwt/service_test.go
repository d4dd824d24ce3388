package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACService_RoundTrip(t *testing.T) {
	s := NewHMACService("access", "refresh", time.Minute, time.Hour)
	id := uuid.New()

	at, err := s.GenerateAccessToken(id, "a@b.test", "employer")
	require.NoError(t, err)

	c, err := s.ValidateAccessToken(at)
	require.NoError(t, err)
	assert.Equal(t, id, c.UserID)
	assert.Equal(t, "employer", c.Role)
	assert.Equal(t, TokenTypeAccess, c.TokenType)

	_, err = s.ValidateRefreshToken(at)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	rt, err := s.GenerateRefreshToken(id)
	require.NoError(t, err)
	_, err = s.ValidateAccessToken(rt)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	rc, err := s.ValidateRefreshToken(rt)
	require.NoError(t, err)
	assert.Equal(t, id, rc.UserID)
}

func TestHMACService_Expired(t *testing.T) {
	s := NewHMACService("access", "refresh", time.Minute, time.Hour)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	tok, err := s.GenerateAccessToken(uuid.New(), "", "student")
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = s.ValidateAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_Garbage(t *testing.T) {
	s := NewHMACService("access", "refresh", time.Minute, time.Hour)
	_, err := s.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	empty := NewHMACService("", "refresh", time.Minute, time.Hour)
	_, err = empty.GenerateAccessToken(uuid.New(), "", "")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
