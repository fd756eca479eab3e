package travelindex

import (
	"math"
	"sort"
	"strings"

	"github.com/gilby125/travel-index-api/catalog"
	"github.com/gilby125/travel-index-api/weather"
)

// neutralWeatherScore is substituted when a destination has no usable
// weather record. Neutral means the destination is neither rewarded nor
// punished for missing data.
const neutralWeatherScore = 0.5

// idealTemperature and temperatureRange define the comfort curve: the score
// decays linearly from 1.0 at 20°C to 0.0 at a 30°C deviation.
const (
	idealTemperature = 20.0
	temperatureRange = 30.0
)

// Beer price normalization bounds in EUR. Below the floor scores 1.0,
// above the ceiling scores 0.0.
const (
	beerPriceFloor   = 3.0
	beerPriceCeiling = 10.0
)

// michelinCeiling is the Michelin restaurant count that earns a full
// fine-dining sub-score. Paris sits near this figure.
const michelinCeiling = 150.0

// Blend shares inside the food score.
const (
	foodQualityShare = 0.60
	beerPriceShare   = 0.25
	michelinShare    = 0.15
)

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// priceScore normalizes a live price against the cheapest quote in the same
// batch: the cheapest destination scores 1.0 and everything else scores
// proportionally below it.
func priceScore(price, cheapestInBatch float64) float64 {
	if price <= 0 || cheapestInBatch <= 0 {
		return 0
	}
	return clamp01(cheapestInBatch / price)
}

// weatherScore maps a forecast record onto [0,1]: a temperature comfort
// curve centered on idealTemperature, damped by adverse conditions. A nil
// record yields the neutral score.
func weatherScore(rec *weather.Record) float64 {
	if rec == nil {
		return neutralWeatherScore
	}

	score := clamp01(1.0 - math.Abs(rec.AvgTemperature-idealTemperature)/temperatureRange)
	return score * conditionModifier(rec.Condition)
}

func conditionModifier(condition string) float64 {
	switch strings.ToLower(condition) {
	case "thunderstorm", "snow":
		return 0.7
	case "rain":
		return 0.85
	case "drizzle":
		return 0.9
	default:
		return 1.0
	}
}

// foodScore blends the catalog's 0-10 food quality score with beer price
// (cheaper is better) and Michelin restaurant density. A missing beer price
// falls back to the midpoint rather than skewing the blend.
func foodScore(q catalog.QualityOfLife) float64 {
	quality := clamp01(q.FoodQuality / 10.0)

	beer := 0.5
	if q.BeerPriceEUR > 0 {
		beer = clamp01((beerPriceCeiling - q.BeerPriceEUR) / (beerPriceCeiling - beerPriceFloor))
	}

	michelin := clamp01(float64(q.MichelinRestaurants) / michelinCeiling)

	return foodQualityShare*quality + beerPriceShare*beer + michelinShare*michelin
}

// tenPointScore normalizes a 0-10 catalog metric onto [0,1].
func tenPointScore(value float64) float64 {
	return clamp01(value / 10.0)
}

// composite folds the sub-scores into the final index value using the
// request's weights.
func composite(weights Weights, subScores map[string]float64) float64 {
	// Sum in a fixed key order: float addition is not associative, so map
	// iteration order would make equal inputs produce unequal totals.
	keys := make([]string, 0, len(weights))
	for key := range weights {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := 0.0
	for _, key := range keys {
		total += weights[key] * subScores[key]
	}
	return total
}
