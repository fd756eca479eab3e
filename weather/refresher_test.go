package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilby125/travel-index-api/catalog"
	"github.com/gilby125/travel-index-api/pkg/cache"
	"github.com/gilby125/travel-index-api/pkg/geo"
)

type stubFetcher struct {
	records map[string]Record
	fail    map[string]bool
}

func (s *stubFetcher) Fetch(_ context.Context, cityID string, _, _ float64) (Record, error) {
	if s.fail[cityID] {
		return Record{}, errors.New("provider down")
	}
	return s.records[cityID], nil
}

func testDestination(cityID, city string, lat, lon float64) catalog.Destination {
	return catalog.Destination{
		CityID:      cityID,
		City:        city,
		Coordinates: geo.Coordinates{Lat: lat, Lon: lon},
	}
}

func TestRefresher_RefreshAll(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewStore(cache.NewRedisCache(client, "test"), cache.WeatherTTL)
	cat := catalog.NewStaticStore([]catalog.Destination{
		testDestination("lisbon", "Lisbon", 38.72, -9.14),
		testDestination("rome", "Rome", 41.90, 12.50),
	})
	fetcher := &stubFetcher{
		records: map[string]Record{
			"lisbon": {CityID: "lisbon", AvgTemperature: 19, Condition: "clear sky"},
			"rome":   {CityID: "rome", AvgTemperature: 25, Condition: "few clouds"},
		},
	}

	r := NewRefresher(cat, fetcher, store)
	require.NoError(t, r.RefreshAll(context.Background()))

	rec, err := store.Get(context.Background(), "lisbon")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 19.0, rec.AvgTemperature)

	rec, err = store.Get(context.Background(), "rome")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "few clouds", rec.Condition)
}

func TestRefresher_PartialFailureContinues(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewStore(cache.NewRedisCache(client, "test"), cache.WeatherTTL)
	cat := catalog.NewStaticStore([]catalog.Destination{
		testDestination("lisbon", "Lisbon", 38.72, -9.14),
		testDestination("rome", "Rome", 41.90, 12.50),
	})
	fetcher := &stubFetcher{
		records: map[string]Record{
			"rome": {CityID: "rome", AvgTemperature: 25},
		},
		fail: map[string]bool{"lisbon": true},
	}

	r := NewRefresher(cat, fetcher, store)
	require.NoError(t, r.RefreshAll(context.Background()), "one failed city must not fail the sweep")

	rec, err := store.Get(context.Background(), "lisbon")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = store.Get(context.Background(), "rome")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestRefresher_AllFailed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewStore(cache.NewRedisCache(client, "test"), cache.WeatherTTL)
	cat := catalog.NewStaticStore([]catalog.Destination{
		testDestination("lisbon", "Lisbon", 38.72, -9.14),
	})
	fetcher := &stubFetcher{fail: map[string]bool{"lisbon": true}}

	r := NewRefresher(cat, fetcher, store)
	assert.Error(t, r.RefreshAll(context.Background()))
}
