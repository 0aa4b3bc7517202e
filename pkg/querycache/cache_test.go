package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "users:list")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "users:list", []byte(`[1]`), 0))
	got, ok, err := m.Get(ctx, "users:list")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[1]`), got)

	// returned slices are copies
	got[0] = 'x'
	again, _, _ := m.Get(ctx, "users:list")
	assert.Equal(t, []byte(`[1]`), again)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_InvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, k := range []string{"users:list", "users:listing", "users:byId:1", "users:byId:2", "users:findNames:firstName=Jo"} {
		require.NoError(t, m.Set(ctx, k, []byte("x"), 0))
	}

	require.NoError(t, m.InvalidatePrefix(ctx, "users:byId"))
	_, ok, _ := m.Get(ctx, "users:byId:1")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "users:byId:2")
	assert.False(t, ok)

	require.NoError(t, m.InvalidatePrefix(ctx, "users:list"))
	_, ok, _ = m.Get(ctx, "users:list")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "users:listing")
	assert.True(t, ok, "sibling keys sharing a string prefix survive")
	assert.Equal(t, 2, m.Len())
}

func TestKeyAndGlobEscape(t *testing.T) {
	assert.Equal(t, "users:byId:7", Key("users", "byId", "7"))
	assert.Equal(t, `users:findNames:firstName=J\*`, globEscape("users:findNames:firstName=J*"))
}
