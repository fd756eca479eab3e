package travelindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gilby125/travel-index-api/airport"
	"github.com/gilby125/travel-index-api/catalog"
	"github.com/gilby125/travel-index-api/pkg/logger"
	"github.com/gilby125/travel-index-api/pkg/upstream"
	"github.com/gilby125/travel-index-api/pricing"
	"github.com/gilby125/travel-index-api/weather"
)

// Exclusion reasons reported for destinations dropped from a ranking.
const (
	ReasonResolutionFailed    = "resolution_failed"
	ReasonUpstreamUnavailable = "upstream_unavailable"
	ReasonNoRoute             = "no_route"
	ReasonInvalidRoute        = "invalid_route"
)

// Resolver maps a location to its nearest airport code.
type Resolver interface {
	Resolve(ctx context.Context, loc airport.Location) (string, error)
}

// Pricer quotes a live round-trip price between two airports.
type Pricer interface {
	Price(ctx context.Context, origin, destination string) (*pricing.Quote, error)
}

// WeatherReader reads the latest weather record for a city. A nil record
// with a nil error means no usable data.
type WeatherReader interface {
	Get(ctx context.Context, cityID string) (*weather.Record, error)
}

// Auditor persists one computed report. Implementations must not fail the
// request path: the calculator logs audit errors and moves on.
type Auditor interface {
	RecordReport(ctx context.Context, report *Report) error
}

// Ranking is one destination's final position in a report.
type Ranking struct {
	CityID      string             `json:"city_id"`
	City        string             `json:"city"`
	Country     string             `json:"country"`
	AirportCode string             `json:"airport_code"`
	Score       float64            `json:"score"`
	SubScores   map[string]float64 `json:"sub_scores"`
	Flight      *pricing.Quote     `json:"flight"`
	Weather     *weather.Record    `json:"weather,omitempty"`
}

// Exclusion names a destination left out of the ranking and why.
type Exclusion struct {
	CityID string `json:"city_id"`
	City   string `json:"city"`
	Reason string `json:"reason"`
}

// Report is the full result of one index computation.
type Report struct {
	RequestID   string      `json:"request_id"`
	HomeCity    string      `json:"home_city"`
	HomeCountry string      `json:"home_country"`
	HomeAirport string      `json:"home_airport"`
	Weights     Weights     `json:"weights"`
	GeneratedAt time.Time   `json:"generated_at"`
	Rankings    []Ranking   `json:"rankings"`
	Exclusions  []Exclusion `json:"exclusions"`
}

// Calculator orchestrates the scoring pipeline. Per-destination work runs
// concurrently; a destination that fails is excluded with a reason rather
// than failing the batch. Only home airport resolution is fatal.
type Calculator struct {
	catalog     catalog.Store
	resolver    Resolver
	pricer      Pricer
	weather     WeatherReader
	auditor     Auditor
	concurrency int
	now         func() time.Time
}

// NewCalculator builds a Calculator. The auditor may be nil to disable
// audit persistence.
func NewCalculator(cat catalog.Store, resolver Resolver, pricer Pricer, wr WeatherReader, auditor Auditor, concurrency int) *Calculator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Calculator{
		catalog:     cat,
		resolver:    resolver,
		pricer:      pricer,
		weather:     wr,
		auditor:     auditor,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// destinationOutcome carries one destination's result out of the fan-out.
// Exactly one of ranking or exclusion is set.
type destinationOutcome struct {
	ranking   *Ranking
	exclusion *Exclusion
}

// Compute resolves the home airport, fans out over the catalog, and returns
// the ranked report. Weight validation and home resolution happen before
// any per-destination work.
func (c *Calculator) Compute(ctx context.Context, home airport.Location, override Weights) (*Report, error) {
	weights, err := ResolveWeights(override)
	if err != nil {
		return nil, err
	}

	homeAirport, err := c.resolver.Resolve(ctx, home)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home airport for %s, %s: %w", home.City, home.Country, err)
	}

	destinations, err := c.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}

	outcomes := make([]destinationOutcome, len(destinations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, dest := range destinations {
		i, dest := i, dest
		g.Go(func() error {
			outcomes[i] = c.scoreDestination(gctx, homeAirport, dest)
			return nil
		})
	}
	// Goroutines report failures through outcomes, never through the group.
	_ = g.Wait()

	report := &Report{
		RequestID:   uuid.NewString(),
		HomeCity:    home.City,
		HomeCountry: home.Country,
		HomeAirport: homeAirport,
		Weights:     weights,
		GeneratedAt: c.now().UTC(),
	}

	cheapest := cheapestQuote(outcomes)
	for _, outcome := range outcomes {
		if outcome.exclusion != nil {
			report.Exclusions = append(report.Exclusions, *outcome.exclusion)
			continue
		}
		r := outcome.ranking
		r.SubScores[WeightFlightPrice] = priceScore(r.Flight.Price, cheapest)
		r.Score = composite(weights, r.SubScores)
		report.Rankings = append(report.Rankings, *r)
	}

	sort.Slice(report.Rankings, func(i, j int) bool {
		if report.Rankings[i].Score != report.Rankings[j].Score {
			return report.Rankings[i].Score > report.Rankings[j].Score
		}
		return report.Rankings[i].CityID < report.Rankings[j].CityID
	})

	c.audit(ctx, report)
	return report, nil
}

// scoreDestination does the per-destination leg of the pipeline: airport
// resolution (when the catalog lacks a code), live pricing, and the weather
// read. The price sub-score is filled in later once the batch cheapest is
// known.
func (c *Calculator) scoreDestination(ctx context.Context, homeAirport string, dest catalog.Destination) destinationOutcome {
	exclude := func(reason string) destinationOutcome {
		return destinationOutcome{exclusion: &Exclusion{CityID: dest.CityID, City: dest.City, Reason: reason}}
	}

	code := dest.IATACode
	if code == "" {
		resolved, err := c.resolver.Resolve(ctx, airport.Location{
			City:        dest.City,
			Country:     dest.Country,
			Coordinates: dest.Coordinates,
		})
		if err != nil {
			logger.WithField("city", dest.City).Warn("excluding destination: airport resolution failed")
			if errors.Is(err, upstream.ErrUnavailable) {
				return exclude(ReasonUpstreamUnavailable)
			}
			return exclude(ReasonResolutionFailed)
		}
		code = resolved
	}

	quote, err := c.pricer.Price(ctx, homeAirport, code)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrInvalidRoute):
			return exclude(ReasonInvalidRoute)
		case errors.Is(err, pricing.ErrNoRoute):
			return exclude(ReasonNoRoute)
		default:
			logger.WithField("city", dest.City).Warn("excluding destination: pricing failed")
			return exclude(ReasonUpstreamUnavailable)
		}
	}

	rec, err := c.weather.Get(ctx, dest.CityID)
	if err != nil {
		// Weather is best effort; score it as unknown rather than excluding.
		logger.WithField("city", dest.City).Warn("weather read failed, scoring as neutral")
		rec = nil
	}

	subScores := map[string]float64{
		WeightWeather:         weatherScore(rec),
		WeightFood:            foodScore(dest.QualityOfLife),
		WeightWalkability:     tenPointScore(dest.Walkability),
		WeightPublicTransport: tenPointScore(dest.PublicTransport),
		WeightSafety:          tenPointScore(dest.Safety),
	}

	return destinationOutcome{ranking: &Ranking{
		CityID:      dest.CityID,
		City:        dest.City,
		Country:     dest.Country,
		AirportCode: code,
		SubScores:   subScores,
		Flight:      quote,
		Weather:     rec,
	}}
}

func cheapestQuote(outcomes []destinationOutcome) float64 {
	cheapest := 0.0
	for _, outcome := range outcomes {
		if outcome.ranking == nil {
			continue
		}
		price := outcome.ranking.Flight.Price
		if cheapest == 0 || price < cheapest {
			cheapest = price
		}
	}
	return cheapest
}

func (c *Calculator) audit(ctx context.Context, report *Report) {
	if c.auditor == nil {
		return
	}
	if err := c.auditor.RecordReport(ctx, report); err != nil {
		logger.Error(err, "failed to persist index audit record", "request_id", report.RequestID)
	}
}
