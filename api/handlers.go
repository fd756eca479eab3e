package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gilby125/travel-index-api/airport"
	"github.com/gilby125/travel-index-api/catalog"
	"github.com/gilby125/travel-index-api/pkg/health"
	"github.com/gilby125/travel-index-api/pkg/upstream"
	"github.com/gilby125/travel-index-api/travelindex"
)

// IndexComputer computes a ranked travel report for a home location.
type IndexComputer interface {
	Compute(ctx context.Context, home airport.Location, weights travelindex.Weights) (*travelindex.Report, error)
}

// AirportResolver maps a location to its nearest airport code.
type AirportResolver interface {
	Resolve(ctx context.Context, loc airport.Location) (string, error)
}

type recommendationsRequest struct {
	HomeCity    string              `json:"home_city" binding:"required"`
	HomeCountry string              `json:"home_country" binding:"required"`
	Weights     travelindex.Weights `json:"weights"`
}

// CreateRecommendations handles POST /api/v1/travel-recommendations
func CreateRecommendations(calc IndexComputer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req recommendationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		home := airport.Location{City: req.HomeCity, Country: req.HomeCountry}
		report, err := calc.Compute(c.Request.Context(), home, req.Weights)
		if err != nil {
			switch {
			case errors.Is(err, travelindex.ErrConfig):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, upstream.ErrUnavailable):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "An upstream provider is unavailable"})
			case errors.Is(err, airport.ErrResolution):
				c.JSON(http.StatusBadGateway, gin.H{"error": "Could not resolve an airport for the home location"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute travel recommendations"})
			}
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

type resolveAirportRequest struct {
	City    string `json:"city" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// ResolveAirport handles POST /api/v1/resolve-airport
func ResolveAirport(resolver AirportResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resolveAirportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		code, err := resolver.Resolve(c.Request.Context(), airport.Location{City: req.City, Country: req.Country})
		if err != nil {
			switch {
			case errors.Is(err, upstream.ErrUnavailable):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The airport inference provider is unavailable"})
			case errors.Is(err, airport.ErrResolution):
				c.JSON(http.StatusBadGateway, gin.H{"error": "Could not resolve an airport for this location"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve airport"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"city":         req.City,
			"country":      req.Country,
			"airport_code": code,
		})
	}
}

// ListDestinations handles GET /api/v1/destinations
func ListDestinations(cat catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		destinations, err := cat.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list destinations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"count":        len(destinations),
			"destinations": destinations,
		})
	}
}

// GetDetailedHealth handles GET /health/detailed
func GetDetailedHealth(checker *health.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := checker.CheckHealth(c.Request.Context())

		status := http.StatusOK
		if report.Status == health.StatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}
