package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client), mr
}

func TestCache_SetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	val := map[string]interface{}{"index_status": "success", "text_length": float64(42)}
	require.NoError(t, c.Set(ctx, "candidate:index:abc", val, time.Minute))

	var got map[string]interface{}
	require.NoError(t, c.Get(ctx, "candidate:index:abc", &got))
	assert.Equal(t, val, got)

	require.NoError(t, c.Delete(ctx, "candidate:index:abc"))
	assert.Error(t, c.Get(ctx, "candidate:index:abc", &got))
}

func TestCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got map[string]interface{}
	err := c.Get(context.Background(), "candidate:index:missing", &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestAcquireReindexLock(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	release, err := c.AcquireReindexLock(ctx, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, release)

	// A second acquisition while the lock is held reports the conflict.
	_, err = c.AcquireReindexLock(ctx, time.Hour)
	assert.ErrorIs(t, err, ErrReindexRunning)

	// Releasing frees the lock for the next run.
	release()
	release2, err := c.AcquireReindexLock(ctx, time.Hour)
	require.NoError(t, err)
	release2()
}

func TestAcquireReindexLock_ExpiresWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.AcquireReindexLock(ctx, time.Minute)
	require.NoError(t, err)

	// A crashed holder never calls release; expiry unblocks the next run.
	mr.FastForward(2 * time.Minute)

	release, err := c.AcquireReindexLock(ctx, time.Minute)
	require.NoError(t, err)
	release()
}
