package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache is an in-memory Cache that ignores the store-level TTL, simulating
// a backing store whose expiry sweep lags behind wall time.
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func TestAirportCache_EntryExpiryCheckedAtRead(t *testing.T) {
	t.Parallel()

	store := newMemCache()
	ac := NewAirportCache(store, time.Hour)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ac.now = func() time.Time { return base }

	ctx := context.Background()
	require.NoError(t, ac.Put(ctx, "Vienna", "Austria", "VIE"))

	// Fresh read inside the TTL window.
	code, err := ac.Get(ctx, "Vienna", "Austria")
	require.NoError(t, err)
	assert.Equal(t, "VIE", code)

	// One second before expiry the entry is still valid.
	ac.now = func() time.Time { return base.Add(time.Hour - time.Second) }
	_, err = ac.Get(ctx, "Vienna", "Austria")
	require.NoError(t, err)

	// At the expiry boundary and beyond the entry reads as absent even
	// though the backing store still holds it.
	ac.now = func() time.Time { return base.Add(time.Hour) }
	_, err = ac.Get(ctx, "Vienna", "Austria")
	assert.ErrorIs(t, err, ErrCacheMiss)

	exists, err := store.Exists(ctx, AirportKey("Vienna", "Austria"))
	require.NoError(t, err)
	assert.True(t, exists, "entry should still be physically present")
}

func TestAirportEntry_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	entry := AirportEntry{Code: "LIS", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}

	assert.False(t, entry.Expired(now))
	assert.True(t, entry.Expired(now.Add(time.Minute)))
	assert.True(t, entry.Expired(now.Add(2*time.Minute)))
}
