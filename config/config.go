package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port           string
	HTTPBindAddr   string
	Environment    string
	LoggingConfig  LoggingConfig
	PostgresConfig PostgresConfig
	RedisConfig    RedisConfig
	VaultConfig    VaultConfig
	UpstreamConfig UpstreamConfig
	ResolverConfig ResolverConfig
	PricerConfig   PricerConfig
	WeatherConfig  WeatherConfig
	IndexConfig    IndexConfig
	WorkerEnabled  bool
	InitSchema     bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// VaultConfig holds secret vault configuration. When disabled, credentials
// are read from environment variables instead.
type VaultConfig struct {
	Enabled bool
	Addr    string
	Token   string
	Path    string
}

// UpstreamConfig holds the retry policy shared by all third-party HTTP providers.
type UpstreamConfig struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// ResolverConfig holds airport resolver configuration
type ResolverConfig struct {
	InferenceURL string
	CacheTTL     time.Duration
}

// PricerConfig holds flight pricer configuration
type PricerConfig struct {
	AuthURL           string
	FlightOffersURL   string
	Currency          string
	DepartureLeadDays int
	ReturnLeadDays    int
	MaxOffers         int
}

// WeatherConfig holds weather store and refresh configuration
type WeatherConfig struct {
	ForecastURL string
	RefreshCron string
	TTL         time.Duration
}

// IndexConfig holds index calculator configuration
type IndexConfig struct {
	Concurrency  int
	AuditEnabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	port := getEnv("PORT", "8080")
	httpBindAddr := getEnv("HTTP_BIND_ADDR", "")
	environment := getEnv("ENVIRONMENT", "development")
	workerEnabled, _ := strconv.ParseBool(getEnv("WORKER_ENABLED", "true"))
	initSchema, _ := strconv.ParseBool(getEnv("INIT_SCHEMA", "true"))

	loggingConfig := LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	postgresConfig := PostgresConfig{
		Host:     getEnv("DB_HOST", "postgres"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "travelindex"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "travelindex"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisConfig := RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	vaultEnabled, _ := strconv.ParseBool(getEnv("VAULT_ENABLED", "false"))
	vaultConfig := VaultConfig{
		Enabled: vaultEnabled,
		Addr:    getEnv("VAULT_ADDR", "http://vault:8200"),
		Token:   getEnv("VAULT_TOKEN", ""),
		Path:    getEnv("VAULT_SECRET_PATH", "secret/data/travel-index"),
	}

	retryMax, _ := strconv.Atoi(getEnv("UPSTREAM_RETRY_MAX", "3"))
	retryWaitMin, _ := time.ParseDuration(getEnv("UPSTREAM_RETRY_WAIT_MIN", "500ms"))
	retryWaitMax, _ := time.ParseDuration(getEnv("UPSTREAM_RETRY_WAIT_MAX", "8s"))
	upstreamTimeout, _ := time.ParseDuration(getEnv("UPSTREAM_TIMEOUT", "30s"))
	upstreamConfig := UpstreamConfig{
		RetryMax:     retryMax,
		RetryWaitMin: retryWaitMin,
		RetryWaitMax: retryWaitMax,
		Timeout:      upstreamTimeout,
	}

	airportCacheTTL, _ := time.ParseDuration(getEnv("AIRPORT_CACHE_TTL", "720h"))
	resolverConfig := ResolverConfig{
		InferenceURL: getEnv("INFERENCE_URL", "https://router.huggingface.co/hf-inference/models/mistralai/Mixtral-8x7B-Instruct-v0.1"),
		CacheTTL:     airportCacheTTL,
	}

	departureLead, _ := strconv.Atoi(getEnv("PRICER_DEPARTURE_LEAD_DAYS", "7"))
	returnLead, _ := strconv.Atoi(getEnv("PRICER_RETURN_LEAD_DAYS", "14"))
	maxOffers, _ := strconv.Atoi(getEnv("PRICER_MAX_OFFERS", "5"))
	pricerConfig := PricerConfig{
		AuthURL:           getEnv("AMADEUS_AUTH_URL", "https://test.api.amadeus.com/v1/security/oauth2/token"),
		FlightOffersURL:   getEnv("AMADEUS_FLIGHTS_URL", "https://test.api.amadeus.com/v2/shopping/flight-offers"),
		Currency:          getEnv("PRICER_CURRENCY", "EUR"),
		DepartureLeadDays: departureLead,
		ReturnLeadDays:    returnLead,
		MaxOffers:         maxOffers,
	}

	weatherTTL, _ := time.ParseDuration(getEnv("WEATHER_TTL", "6h"))
	weatherConfig := WeatherConfig{
		ForecastURL: getEnv("OPENWEATHER_FORECAST_URL", "https://api.openweathermap.org/data/2.5/forecast"),
		RefreshCron: getEnv("WEATHER_REFRESH_CRON", "0 */3 * * *"),
		TTL:         weatherTTL,
	}

	concurrency, _ := strconv.Atoi(getEnv("INDEX_CONCURRENCY", "10"))
	auditEnabled, _ := strconv.ParseBool(getEnv("INDEX_AUDIT_ENABLED", "true"))
	indexConfig := IndexConfig{
		Concurrency:  concurrency,
		AuditEnabled: auditEnabled,
	}

	return &Config{
		Port:           port,
		HTTPBindAddr:   httpBindAddr,
		Environment:    environment,
		LoggingConfig:  loggingConfig,
		PostgresConfig: postgresConfig,
		RedisConfig:    redisConfig,
		VaultConfig:    vaultConfig,
		UpstreamConfig: upstreamConfig,
		ResolverConfig: resolverConfig,
		PricerConfig:   pricerConfig,
		WeatherConfig:  weatherConfig,
		IndexConfig:    indexConfig,
		WorkerEnabled:  workerEnabled,
		InitSchema:     initSchema,
	}, nil
}

// LoadTestConfig loads test configuration
func LoadTestConfig() *Config {
	return &Config{
		PostgresConfig: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "travelindex"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME_TEST", "travelindex_test"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisConfig: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		UpstreamConfig: UpstreamConfig{
			RetryMax:     1,
			RetryWaitMin: time.Millisecond,
			RetryWaitMax: 10 * time.Millisecond,
			Timeout:      5 * time.Second,
		},
		IndexConfig: IndexConfig{
			Concurrency: 4,
		},
		Environment:   "test",
		WorkerEnabled: false,
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if len(strings.TrimSpace(value)) == 0 {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
