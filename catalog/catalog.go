// Package catalog provides read access to the static destination catalog.
// Destination records are externally supplied and immutable after load.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gilby125/travel-index-api/pkg/geo"
)

// QualityOfLife holds the fixed per-city quality-of-life metrics.
// The 0-10 scores come from the catalog build; beer price and Michelin
// count are raw figures normalized at scoring time.
type QualityOfLife struct {
	FoodQuality         float64 `json:"food_quality_score"`
	Walkability         float64 `json:"walkability_score"`
	PublicTransport     float64 `json:"public_transport_score"`
	Safety              float64 `json:"safety_score"`
	BeerPriceEUR        float64 `json:"beer_price_eur"`
	MichelinRestaurants int     `json:"michelin_restaurants"`
}

// Destination is one catalog entry. IATACode may be empty when the catalog
// build could not pre-resolve the city's airport; the resolver fills the gap
// at request time.
type Destination struct {
	CityID      string          `json:"city_id"`
	City        string          `json:"city"`
	Country     string          `json:"country"`
	IATACode    string          `json:"iata_code,omitempty"`
	Coordinates geo.Coordinates `json:"coordinates"`
	QualityOfLife
}

// Store lists catalog destinations.
type Store interface {
	List(ctx context.Context) ([]Destination, error)
}

// Querier abstracts the subset of pgxpool.Pool used by PostgresStore,
// allowing injection of a mock in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore reads the destination catalog from PostgreSQL.
type PostgresStore struct {
	q Querier
}

// NewPostgresStore constructs a PostgresStore backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{q: pool}
}

// NewPostgresStoreWithQuerier constructs a PostgresStore with a custom Querier (for tests).
func NewPostgresStoreWithQuerier(q Querier) *PostgresStore {
	return &PostgresStore{q: q}
}

// List returns every destination, ordered by city id for determinism.
func (s *PostgresStore) List(ctx context.Context) ([]Destination, error) {
	const q = `
		SELECT city_id, city, country, COALESCE(iata_code, ''),
			COALESCE(latitude, 0), COALESCE(longitude, 0),
			food_quality, walkability, public_transport, safety,
			beer_price_eur, michelin_restaurants
		FROM destinations
		ORDER BY city_id
	`

	rows, err := s.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying destinations: %w", err)
	}
	defer rows.Close()

	var destinations []Destination
	for rows.Next() {
		var d Destination
		if err := rows.Scan(
			&d.CityID, &d.City, &d.Country, &d.IATACode,
			&d.Coordinates.Lat, &d.Coordinates.Lon,
			&d.FoodQuality, &d.Walkability, &d.PublicTransport, &d.Safety,
			&d.BeerPriceEUR, &d.MichelinRestaurants,
		); err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}
		destinations = append(destinations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}

	return destinations, nil
}

// StaticStore serves a fixed destination slice. Used in tests and as a
// fallback catalog when no database is configured.
type StaticStore struct {
	destinations []Destination
}

// NewStaticStore constructs a StaticStore from the given destinations.
func NewStaticStore(destinations []Destination) *StaticStore {
	return &StaticStore{destinations: destinations}
}

// List returns the fixed destination set.
func (s *StaticStore) List(_ context.Context) ([]Destination, error) {
	out := make([]Destination, len(s.destinations))
	copy(out, s.destinations)
	return out, nil
}
