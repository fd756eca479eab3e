package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gilby125/travel-index-api/airport"
	"github.com/gilby125/travel-index-api/api"
	"github.com/gilby125/travel-index-api/catalog"
	"github.com/gilby125/travel-index-api/config"
	"github.com/gilby125/travel-index-api/db"
	"github.com/gilby125/travel-index-api/pkg/buildinfo"
	"github.com/gilby125/travel-index-api/pkg/cache"
	"github.com/gilby125/travel-index-api/pkg/health"
	"github.com/gilby125/travel-index-api/pkg/logger"
	"github.com/gilby125/travel-index-api/pkg/secrets"
	"github.com/gilby125/travel-index-api/pkg/upstream"
	"github.com/gilby125/travel-index-api/pricing"
	"github.com/gilby125/travel-index-api/travelindex"
	"github.com/gilby125/travel-index-api/weather"
	"github.com/gilby125/travel-index-api/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Config{Level: "info", Format: "text"})
		logger.Fatal(err, "Failed to load configuration")
	}

	logger.Init(logger.Config{
		Level:  cfg.LoggingConfig.Level,
		Format: cfg.LoggingConfig.Format,
	})
	logger.Info("Starting travel index service",
		"version", buildinfo.Version, "environment", cfg.Environment)

	ctx := context.Background()

	// Credentials are resolved once at startup and held in memory only.
	var credentialSource secrets.Source = secrets.EnvSource{}
	if cfg.VaultConfig.Enabled {
		credentialSource = secrets.NewVaultSource(
			cfg.VaultConfig.Addr, cfg.VaultConfig.Token, cfg.VaultConfig.Path)
	}
	creds, err := credentialSource.Resolve(ctx)
	if err != nil {
		logger.Fatal(err, "Failed to resolve provider credentials")
	}

	postgresDB, err := db.NewPostgresDB(ctx, cfg.PostgresConfig)
	if err != nil {
		logger.Fatal(err, "Failed to connect to PostgreSQL")
	}
	defer postgresDB.Close()

	if cfg.InitSchema {
		if err := postgresDB.InitSchema(ctx); err != nil {
			logger.Fatal(err, "Failed to initialize PostgreSQL schema")
		}
		if err := postgresDB.SeedData(ctx); err != nil {
			logger.Fatal(err, "Failed to seed destination catalog")
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Host + ":" + cfg.RedisConfig.Port,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal(err, "Failed to connect to Redis")
	}
	defer redisClient.Close()

	upstreamCfg := upstream.Config{
		RetryMax:     cfg.UpstreamConfig.RetryMax,
		RetryWaitMin: cfg.UpstreamConfig.RetryWaitMin,
		RetryWaitMax: cfg.UpstreamConfig.RetryWaitMax,
		Timeout:      cfg.UpstreamConfig.Timeout,
	}

	redisCache := cache.NewRedisCache(redisClient, "travelindex")
	airportCache := cache.NewAirportCache(redisCache, cfg.ResolverConfig.CacheTTL)

	inference := airport.NewInferenceClient(
		cfg.ResolverConfig.InferenceURL, creds.InferenceAPIKey, upstreamCfg)
	resolver := airport.NewResolver(airportCache, inference)

	pricer, err := pricing.NewAmadeusPricer(cfg.PricerConfig, &creds, upstream.NewClient(upstreamCfg))
	if err != nil {
		logger.Fatal(err, "Failed to build flight pricer")
	}

	catalogStore := catalog.NewPostgresStore(postgresDB.Pool())
	weatherStore := weather.NewStore(redisCache, cfg.WeatherConfig.TTL)

	var auditor travelindex.Auditor
	if cfg.IndexConfig.AuditEnabled {
		auditor = db.NewAuditWriter(postgresDB)
	}

	calculator := travelindex.NewCalculator(
		catalogStore, resolver, pricer, weatherStore, auditor, cfg.IndexConfig.Concurrency)

	if cfg.WorkerEnabled {
		forecasts := weather.NewClient(
			cfg.WeatherConfig.ForecastURL, creds.OpenWeatherAPIKey, upstreamCfg)
		refresher := weather.NewRefresher(catalogStore, forecasts, weatherStore)

		scheduler := worker.NewScheduler(refresher, cfg.WeatherConfig.RefreshCron)
		if err := scheduler.Start(); err != nil {
			logger.Fatal(err, "Failed to start weather refresh scheduler")
		}
		defer scheduler.Stop()
	}

	healthChecker := health.NewHealthChecker(buildinfo.Version)
	healthChecker.AddChecker(&health.PostgresChecker{Pool: postgresDB.Pool(), Name: "postgres"})
	healthChecker.AddChecker(&health.RedisChecker{Client: redisClient, Name: "redis"})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.RegisterRoutes(router, calculator, resolver, catalogStore, healthChecker)

	srv := &http.Server{
		Addr:    cfg.HTTPBindAddr + ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(err, "Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal(err, "Server forced to shutdown")
	}

	logger.Info("Server exited properly")
}
