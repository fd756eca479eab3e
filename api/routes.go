// Package api wires the HTTP endpoints for the travel index service.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gilby125/travel-index-api/catalog"
	"github.com/gilby125/travel-index-api/pkg/health"
	"github.com/gilby125/travel-index-api/pkg/middleware"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, calc IndexComputer, resolver AirportResolver, cat catalog.Store, healthChecker *health.HealthChecker) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/health/detailed", GetDetailedHealth(healthChecker))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/travel-recommendations", CreateRecommendations(calc))
		v1.POST("/resolve-airport", ResolveAirport(resolver))
		v1.GET("/destinations", ListDestinations(cat))
	}
}
