// Package airport resolves free-text locations to IATA airport codes.
package airport

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/gilby125/travel-index-api/pkg/cache"
	"github.com/gilby125/travel-index-api/pkg/geo"
	"github.com/gilby125/travel-index-api/pkg/logger"
)

// ErrResolution is returned when no airport can be determined for a
// location: the provider answered, but not with a usable code.
var ErrResolution = errors.New("could not resolve airport")

// codePattern is the only accepted answer shape. Anything else from the
// inference provider is an unusable answer, never silently accepted.
var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Location is a free-text city/country pair. Coordinates are optional and
// only used for the dataset fallback.
type Location struct {
	City        string
	Country     string
	Coordinates geo.Coordinates
}

// Inferencer is the interface satisfied by InferenceClient.
type Inferencer interface {
	NearestAirportCode(ctx context.Context, city, country string) (string, error)
}

// Resolver resolves locations to airport codes, consulting the airport
// cache before calling the inference provider. The cache is best-effort
// acceleration, not a source of truth: cache failures never fail a
// resolution that the provider answered.
type Resolver struct {
	cache     *cache.AirportCache
	inference Inferencer
}

// NewResolver creates a Resolver.
func NewResolver(airportCache *cache.AirportCache, inference Inferencer) *Resolver {
	return &Resolver{cache: airportCache, inference: inference}
}

// Resolve returns the IATA code of the nearest major airport to the
// location. At most one inference request is issued per invocation; a
// cached, unexpired entry short-circuits the upstream call entirely.
func (r *Resolver) Resolve(ctx context.Context, loc Location) (string, error) {
	if code, err := r.cache.Get(ctx, loc.City, loc.Country); err == nil {
		return code, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("Airport cache read failed", "city", loc.City, "error", err)
	}

	code, err := r.resolveUpstream(ctx, loc)
	if err != nil {
		return "", err
	}

	if err := r.cache.Put(ctx, loc.City, loc.Country, code); err != nil {
		logger.Warn("Airport cache write failed", "city", loc.City, "error", err)
	}
	return code, nil
}

// resolveUpstream issues the inference call and validates its answer,
// falling back to the embedded dataset when the answer is unusable and the
// location's coordinates are known.
func (r *Resolver) resolveUpstream(ctx context.Context, loc Location) (string, error) {
	answer, err := r.inference.NearestAirportCode(ctx, loc.City, loc.Country)
	if err != nil {
		return "", fmt.Errorf("inference for %s, %s: %w", loc.City, loc.Country, err)
	}

	if codePattern.MatchString(answer) {
		return answer, nil
	}

	logger.Warn("Unusable inference answer", "city", loc.City, "answer", answer)
	if code := nearestAirport(loc.Coordinates); code != "" {
		logger.Info("Resolved via dataset fallback", "city", loc.City, "code", code)
		return code, nil
	}

	return "", fmt.Errorf("%w: %s, %s", ErrResolution, loc.City, loc.Country)
}
