package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "categories", []byte("[]"), time.Minute))
	require.NoError(t, s.Set(ctx, "revoked:abc", []byte("1"), 0))

	_, ok, err := s.Get(ctx, "categories")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = s.Get(ctx, "categories")
	assert.False(t, ok, "entry must expire at its deadline")
	assert.Equal(t, 1, s.Len())

	_, ok, _ = s.Get(ctx, "revoked:abc")
	assert.True(t, ok, "zero ttl never expires")
}

func TestMemoryStore_ValueIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	got, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "abc", string(got))
}
