package cache_test

import (
	"context"
	"testing"
	"time"

	"vastraa/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisStore(client, "vastraa"), mr
}

func TestRedisStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, ok, err := s.Get(ctx, "cart:u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "cart:u1", []byte(`[{"id":"1"}]`), time.Minute))
	assert.True(t, mr.Exists("vastraa:cart:u1"))

	got, ok, err := s.Get(ctx, "cart:u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	mr.FastForward(2 * time.Minute)
	_, ok, _ = s.Get(ctx, "cart:u1")
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "wishlist:u1", []byte("[]"), 0))
	require.NoError(t, s.Delete(ctx, "wishlist:u1"))
	assert.False(t, mr.Exists("vastraa:wishlist:u1"))
}

func TestRedisStore_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	for _, k := range []string{"products:", "products:sarees", "products:kurtis", "product:1"} {
		require.NoError(t, s.Set(ctx, k, []byte("[]"), time.Minute))
	}

	require.NoError(t, s.DeletePrefix(ctx, "products"))
	assert.False(t, mr.Exists("vastraa:products:sarees"))
	assert.False(t, mr.Exists("vastraa:products:"))
	assert.True(t, mr.Exists("vastraa:product:1"))
}

func TestRedisStore_WithCache(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)
	c := cache.New(s, time.Minute, nil)

	calls := 0
	for i := 0; i < 3; i++ {
		v, err := cache.Fetch(ctx, c, "categories", func(context.Context) ([]string, error) {
			calls++
			return []string{"Sarees", "Kurtis"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Sarees", "Kurtis"}, v)
	}
	assert.Equal(t, 1, calls)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := cache.NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestRedisStore_VersionsAreSharedBetweenCaches(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	v, err := s.Version(ctx, "cart")
	require.NoError(t, err)
	assert.Zero(t, v)

	// Two service instances sharing one Redis.
	reader := cache.New(s, time.Minute, nil)
	writer := cache.New(s, time.Minute, nil)

	got, err := cache.Fetch(ctx, reader, "cart:u1", func(context.Context) (string, error) {
		writer.Invalidate(ctx, "cart:u1")
		return "stale", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "stale", got)
	assert.False(t, mr.Exists("vastraa:cart:u1"))

	v, err = s.Version(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	got, err = cache.Fetch(ctx, reader, "cart:u1", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.True(t, mr.Exists("vastraa:cart:u1"))
}
