package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, c.Delete(ctx, "k"))

	_, err = c.Get(ctx, "k")
	var miss ErrKeyNotFound
	require.True(t, errors.As(err, &miss))
	assert.Equal(t, "k", miss.Key)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "k")
	var miss ErrKeyNotFound
	assert.True(t, errors.As(err, &miss))
}

func TestRedisCache_HealthCheck(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.HealthCheck(ctx))

	mr.Close()
	assert.Error(t, c.HealthCheck(ctx))
}
