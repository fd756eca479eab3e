package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gilby125/travel-index-api/travelindex"
)

// auditRetention is how long audit rows stay readable before the out-of-band
// sweep may remove them.
const auditRetention = 90 * 24 * time.Hour

// batchSender is the subset of pgxpool.Pool the audit writer needs,
// abstracted for tests.
type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// AuditWriter persists computed index reports to travel_index_results,
// one row per ranked destination.
type AuditWriter struct {
	sender batchSender
	now    func() time.Time
}

// NewAuditWriter builds an AuditWriter on top of a PostgresDB.
func NewAuditWriter(pdb *PostgresDB) *AuditWriter {
	return &AuditWriter{sender: pdb.Pool(), now: time.Now}
}

const insertAuditRow = `
	INSERT INTO travel_index_results (
		id, request_id, computed_at, home_airport, city_id,
		composite_score, price_score, weather_score, food_score,
		walkability_score, transit_score, safety_score,
		flight_price, currency, expires_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// RecordReport writes the report's rankings in a single batch. Exclusions
// are not persisted; they are visible in the response and the logs.
func (w *AuditWriter) RecordReport(ctx context.Context, report *travelindex.Report) error {
	if len(report.Rankings) == 0 {
		return nil
	}

	expiresAt := w.now().Add(auditRetention)

	batch := &pgx.Batch{}
	for _, r := range report.Rankings {
		var price *float64
		var currency *string
		if r.Flight != nil {
			price = &r.Flight.Price
			currency = &r.Flight.Currency
		}
		batch.Queue(insertAuditRow,
			uuid.NewString(),
			report.RequestID,
			report.GeneratedAt,
			report.HomeAirport,
			r.CityID,
			r.Score,
			r.SubScores[travelindex.WeightFlightPrice],
			r.SubScores[travelindex.WeightWeather],
			r.SubScores[travelindex.WeightFood],
			r.SubScores[travelindex.WeightWalkability],
			r.SubScores[travelindex.WeightPublicTransport],
			r.SubScores[travelindex.WeightSafety],
			price,
			currency,
			expiresAt,
		)
	}

	results := w.sender.SendBatch(ctx, batch)
	defer results.Close()

	for range report.Rankings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert audit row for request %s: %w", report.RequestID, err)
		}
	}
	return nil
}
