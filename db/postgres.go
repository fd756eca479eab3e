package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gilby125/travel-index-api/config"
)

// PostgresDB represents a PostgreSQL database connection pool
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgresDB creates a new PostgreSQL connection pool and verifies it with a ping.
func NewPostgresDB(ctx context.Context, cfg config.PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the connection pool
func (p *PostgresDB) Close() {
	p.pool.Close()
}

// Pool returns the underlying connection pool
func (p *PostgresDB) Pool() *pgxpool.Pool {
	return p.pool
}

// InitSchema initializes the database schema
func (p *PostgresDB) InitSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		-- Destination catalog: static quality-of-life data per city.
		-- Immutable after load; the pipeline only reads it.
		CREATE TABLE IF NOT EXISTS destinations (
			city_id VARCHAR(64) PRIMARY KEY,
			city VARCHAR(255) NOT NULL,
			country VARCHAR(255) NOT NULL,
			iata_code VARCHAR(3),
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			food_quality NUMERIC(4, 1) NOT NULL DEFAULT 7.0,
			walkability NUMERIC(4, 1) NOT NULL DEFAULT 7.0,
			public_transport NUMERIC(4, 1) NOT NULL DEFAULT 7.0,
			safety NUMERIC(4, 1) NOT NULL DEFAULT 7.0,
			beer_price_eur NUMERIC(6, 2) NOT NULL DEFAULT 6.5,
			michelin_restaurants INT NOT NULL DEFAULT 20
		);

		-- Audit trail for computed index results, one row per
		-- (request, destination). Expired rows are swept out of band.
		CREATE TABLE IF NOT EXISTS travel_index_results (
			id UUID PRIMARY KEY,
			request_id UUID NOT NULL,
			computed_at TIMESTAMPTZ NOT NULL,
			home_airport VARCHAR(3) NOT NULL,
			city_id VARCHAR(64) NOT NULL,
			composite_score NUMERIC(6, 4) NOT NULL,
			price_score NUMERIC(6, 4) NOT NULL,
			weather_score NUMERIC(6, 4) NOT NULL,
			food_score NUMERIC(6, 4) NOT NULL,
			walkability_score NUMERIC(6, 4) NOT NULL,
			transit_score NUMERIC(6, 4) NOT NULL,
			safety_score NUMERIC(6, 4) NOT NULL,
			flight_price NUMERIC(10, 2),
			currency VARCHAR(3),
			expires_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_travel_index_results_request
			ON travel_index_results (request_id, computed_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}
