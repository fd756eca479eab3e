package db

import (
	"context"
	"fmt"

	"github.com/gilby125/travel-index-api/pkg/logger"
)

// SeedData seeds the destination catalog with initial data. Only runs when
// the table is empty, so redeploys never clobber an externally managed catalog.
func (p *PostgresDB) SeedData(ctx context.Context) error {
	var count int
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM destinations").Scan(&count); err != nil {
		return fmt.Errorf("failed to check if destinations table is empty: %w", err)
	}

	if count > 0 {
		return nil
	}

	logger.Info("Seeding destination catalog...")
	return p.seedDestinations(ctx)
}

// seedDestinations seeds the catalog with the default European city set.
// Columns: city_id, city, country, iata, lat, lon, food, walk, transit,
// safety, beer EUR, michelin count.
func (p *PostgresDB) seedDestinations(ctx context.Context) error {
	destinations := [][]interface{}{
		{"barcelona", "Barcelona", "Spain", "BCN", 41.3874, 2.1686, 8.5, 9.0, 8.5, 7.5, 3.5, 29},
		{"paris", "Paris", "France", "CDG", 48.8566, 2.3522, 9.5, 8.5, 9.0, 7.0, 7.0, 119},
		{"london", "London", "United Kingdom", "LHR", 51.5072, -0.1276, 8.0, 8.0, 9.0, 7.5, 6.5, 85},
		{"amsterdam", "Amsterdam", "Netherlands", "AMS", 52.3676, 4.9041, 7.5, 9.5, 9.0, 8.5, 5.5, 23},
		{"lisbon", "Lisbon", "Portugal", "LIS", 38.7223, -9.1393, 8.0, 7.5, 7.5, 8.5, 2.5, 14},
		{"rome", "Rome", "Italy", "FCO", 41.9028, 12.4964, 9.0, 7.5, 6.5, 7.0, 5.0, 24},
		{"prague", "Prague", "Czech Republic", "PRG", 50.0755, 14.4378, 7.0, 8.5, 9.0, 8.5, 2.0, 6},
		{"vienna", "Vienna", "Austria", "VIE", 48.2082, 16.3738, 7.5, 8.5, 9.5, 9.0, 4.0, 13},
		{"berlin", "Berlin", "Germany", "BER", 52.52, 13.405, 7.5, 8.0, 9.0, 8.0, 3.5, 26},
		{"budapest", "Budapest", "Hungary", "BUD", 47.4979, 19.0402, 7.5, 8.0, 8.5, 8.0, 2.0, 7},
		{"copenhagen", "Copenhagen", "Denmark", "CPH", 55.6761, 12.5683, 8.5, 9.0, 9.0, 9.0, 7.5, 15},
		{"madrid", "Madrid", "Spain", "MAD", 40.4168, -3.7038, 8.5, 8.5, 9.0, 8.0, 3.0, 26},
	}

	for _, d := range destinations {
		_, err := p.pool.Exec(ctx, `
			INSERT INTO destinations (
				city_id, city, country, iata_code, latitude, longitude,
				food_quality, walkability, public_transport, safety,
				beer_price_eur, michelin_restaurants
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (city_id) DO NOTHING`,
			d...,
		)
		if err != nil {
			return fmt.Errorf("failed to seed destination %v: %w", d[0], err)
		}
	}

	logger.Info("Destination catalog seeded", "count", len(destinations))
	return nil
}
