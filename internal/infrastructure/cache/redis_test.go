package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_UnavailableBypasses(t *testing.T) {
	ctx := context.Background()
	var r *Redis

	assert.False(t, r.Available())
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	var out map[string]string
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, r.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, r.Delete(ctx, "k"))
	assert.NoError(t, r.DeleteByPattern(ctx, "jobs:list:*"))

	ok, err := r.SetIfNotExists(ctx, "lock", "1", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Keys(ctx, "drafts:*")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, r.Close())
}

func TestRedis_DefaultTTL(t *testing.T) {
	assert.Equal(t, 600*time.Second, (&Redis{}).DefaultTTL())
	assert.Equal(t, time.Minute, (&Redis{ttl: time.Minute}).DefaultTTL())
}
