package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilby125/travel-index-api/pkg/cache"
)

func newTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisCache(client, "travelindex"), mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestRedisCache_Get_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestRedisCache_StoreExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestNormalizeLocationKey_EquivalentSpellings(t *testing.T) {
	t.Parallel()

	base := cache.NormalizeLocationKey("Lisbon", "Portugal")
	assert.Equal(t, "lisbon|portugal", base)

	variants := []struct{ city, country string }{
		{"lisbon", "portugal"},
		{"LISBON", "PORTUGAL"},
		{"  Lisbon ", " Portugal  "},
		{"Lisbon", "portugal"},
	}
	for _, v := range variants {
		assert.Equal(t, base, cache.NormalizeLocationKey(v.city, v.country))
	}

	// Accented spellings fold to the same key as their ASCII forms.
	assert.Equal(t,
		cache.NormalizeLocationKey("Sao Paulo", "Brazil"),
		cache.NormalizeLocationKey("São Paulo", "Brazil"),
	)
	assert.Equal(t,
		cache.NormalizeLocationKey("Malaga", "Spain"),
		cache.NormalizeLocationKey("Málaga", "Spain"),
	)
}

func TestAirportCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	ac := cache.NewAirportCache(c, cache.AirportTTL)
	require.NoError(t, ac.Put(ctx, "Lisbon", "Portugal", "LIS"))

	code, err := ac.Get(ctx, "lisbon ", " PORTUGAL")
	require.NoError(t, err)
	assert.Equal(t, "LIS", code)
}

func TestAirportCache_MissWhenAbsent(t *testing.T) {
	c, _ := newTestCache(t)

	ac := cache.NewAirportCache(c, cache.AirportTTL)
	_, err := ac.Get(context.Background(), "Reykjavik", "Iceland")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
