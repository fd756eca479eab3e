package weather

import (
	"context"
	"fmt"

	"github.com/gilby125/travel-index-api/catalog"
	"github.com/gilby125/travel-index-api/pkg/logger"
)

// Fetcher is the interface satisfied by Client.
type Fetcher interface {
	Fetch(ctx context.Context, cityID string, lat, lon float64) (Record, error)
}

// Refresher walks the destination catalog and refreshes the weather store.
// It runs on a schedule, independent of request traffic; the index
// calculator only ever reads what the last refresh wrote.
type Refresher struct {
	catalog catalog.Store
	fetcher Fetcher
	store   *Store
}

// NewRefresher creates a Refresher.
func NewRefresher(cat catalog.Store, fetcher Fetcher, store *Store) *Refresher {
	return &Refresher{catalog: cat, fetcher: fetcher, store: store}
}

// RefreshAll fetches and stores weather for every catalog destination.
// Per-city failures are logged and skipped; a stale record for one city
// must not block refreshing the others.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	destinations, err := r.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("listing destinations for weather refresh: %w", err)
	}

	var failed int
	for _, dest := range destinations {
		if dest.Coordinates.IsZero() || !dest.Coordinates.IsValid() {
			logger.Warn("Skipping weather refresh, no usable coordinates", "city", dest.City)
			failed++
			continue
		}

		rec, err := r.fetcher.Fetch(ctx, dest.CityID, dest.Coordinates.Lat, dest.Coordinates.Lon)
		if err != nil {
			logger.Error(err, "Weather fetch failed", "city", dest.City)
			failed++
			continue
		}

		if err := r.store.Put(ctx, rec); err != nil {
			logger.Error(err, "Weather store write failed", "city", dest.City)
			failed++
			continue
		}

		logger.Debug("Weather refreshed", "city", dest.City, "avg_temp", rec.AvgTemperature)
	}

	logger.Info("Weather refresh completed", "total", len(destinations), "failed", failed)
	if failed == len(destinations) && len(destinations) > 0 {
		return fmt.Errorf("weather refresh failed for all %d destinations", failed)
	}
	return nil
}
