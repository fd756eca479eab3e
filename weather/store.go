// Package weather provides the weather store read by the index calculator
// and the forecast client used by the scheduled refresher. The calculator
// never writes weather; only the refresher does.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gilby125/travel-index-api/pkg/cache"
)

// Record is the latest aggregated forecast for a city. Absent or expired
// records degrade to a neutral weather sub-score downstream, never an error.
type Record struct {
	CityID         string    `json:"city_id"`
	AvgTemperature float64   `json:"avg_temperature"`
	MinTemperature float64   `json:"min_temperature"`
	MaxTemperature float64   `json:"max_temperature"`
	Condition      string    `json:"condition"`
	AvgHumidity    float64   `json:"avg_humidity"`
	AvgWindSpeed   float64   `json:"avg_wind_speed"`
	ObservedAt     time.Time `json:"observed_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Expired reports whether the record must be treated as absent.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store holds weather records keyed by city id in a TTL key-value store.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewStore creates a weather Store with the given record TTL.
func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl, now: time.Now}
}

// Get returns the record for a city, or nil when absent or expired.
// A missing record is not an error: the caller substitutes a neutral score.
func (s *Store) Get(ctx context.Context, cityID string) (*Record, error) {
	data, err := s.cache.Get(ctx, cache.WeatherKey(cityID))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("weather store get %s: %w", cityID, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt weather record for %s: %w", cityID, err)
	}
	if rec.Expired(s.now()) {
		return nil, nil
	}
	return &rec, nil
}

// Put writes a record for a city with the store TTL. Called by the
// refresher only.
func (s *Store) Put(ctx context.Context, rec Record) error {
	now := s.now()
	rec.ObservedAt = now
	rec.ExpiresAt = now.Add(s.ttl)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal weather record for %s: %w", rec.CityID, err)
	}
	if err := s.cache.Set(ctx, cache.WeatherKey(rec.CityID), data, s.ttl); err != nil {
		return fmt.Errorf("weather store put %s: %w", rec.CityID, err)
	}
	return nil
}
