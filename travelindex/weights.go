// Package travelindex computes the travel desirability index: for a home
// location it ranks every catalog destination by a weighted composite of
// live flight price, recent weather, and fixed quality-of-life metrics.
package travelindex

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfig is returned for malformed scoring weights. Weight validation
// happens before any provider call so a bad request fails fast and cheap.
var ErrConfig = errors.New("invalid index configuration")

// weightSumTolerance absorbs float accumulation noise when checking that
// weights sum to one.
const weightSumTolerance = 1e-9

// Weight keys accepted in a request override.
const (
	WeightFlightPrice     = "flight_price"
	WeightWeather         = "weather"
	WeightFood            = "food"
	WeightWalkability     = "walkability"
	WeightPublicTransport = "public_transport"
	WeightSafety          = "safety"
)

// Weights maps a scoring dimension to its share of the composite score.
type Weights map[string]float64

var knownWeights = map[string]bool{
	WeightFlightPrice:     true,
	WeightWeather:         true,
	WeightFood:            true,
	WeightWalkability:     true,
	WeightPublicTransport: true,
	WeightSafety:          true,
}

// DefaultWeights returns the weighting used when a request carries no
// override. Flight price and weather dominate; the static quality-of-life
// dimensions share the remainder.
func DefaultWeights() Weights {
	return Weights{
		WeightFlightPrice:     0.40,
		WeightWeather:         0.30,
		WeightFood:            0.12,
		WeightWalkability:     0.06,
		WeightPublicTransport: 0.06,
		WeightSafety:          0.06,
	}
}

// Validate checks that every key is known, no weight is negative, and the
// weights sum to 1.0 within tolerance.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("%w: no weights given", ErrConfig)
	}

	sum := 0.0
	for key, value := range w {
		if !knownWeights[key] {
			return fmt.Errorf("%w: unknown weight %q", ErrConfig, key)
		}
		if value < 0 {
			return fmt.Errorf("%w: weight %q is negative", ErrConfig, key)
		}
		sum += value
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.6f, want 1.0", ErrConfig, sum)
	}
	return nil
}

// ResolveWeights returns the defaults when no override is given, otherwise
// the validated override. An override must be complete: partial overrides
// would silently shift meaning, so they are rejected.
func ResolveWeights(override Weights) (Weights, error) {
	if len(override) == 0 {
		return DefaultWeights(), nil
	}
	if err := override.Validate(); err != nil {
		return nil, err
	}
	resolved := make(Weights, len(override))
	for key, value := range override {
		resolved[key] = value
	}
	return resolved, nil
}
