package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMissingKey(t *testing.T) {
	m := NewMemory()
	val, err := m.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestMemoryRoundtripAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "user", `{"id":1}`, 0))
	require.NoError(t, m.Set(ctx, "token", "tok", 0))

	val, err := m.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, val)

	require.NoError(t, m.Delete(ctx, "user", "token"))
	for _, k := range []string{"user", "token"} {
		val, err := m.Get(ctx, k)
		require.NoError(t, err)
		assert.Empty(t, val)
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "token", "tok", 10*time.Millisecond))

	val, err := m.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok", val)

	time.Sleep(20 * time.Millisecond)
	val, err = m.Get(ctx, "token")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisRoundtrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "user", `{"id":2}`, 0))
	val, err := store.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":2}`, val)

	// keys are namespaced inside redis
	assert.True(t, mr.Exists("everbite:session:user"))

	require.NoError(t, store.Delete(ctx, "user"))
	val, err = store.Get(ctx, "user")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "token", "tok", time.Minute))
	mr.FastForward(2 * time.Minute)

	val, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url")
	require.Error(t, err)
}
