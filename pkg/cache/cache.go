package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	anyascii "github.com/anyascii/go"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache interface defines key-value caching operations with TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RedisCache implements Cache using Redis
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

// prefixKey adds the cache prefix to a key
func (c *RedisCache) prefixKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefixKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return []byte(val), nil
}

// Set stores a value in cache with TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefixKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Delete removes a value from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefixKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Exists checks if a key exists in cache
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Exists(ctx, c.prefixKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}
	return count > 0, nil
}

// NormalizeLocationKey builds the cache key for a city/country pair.
// Spelling variants that differ only by case, surrounding whitespace, or
// accented characters map to the same key, so resolution is idempotent
// over equivalent inputs.
func NormalizeLocationKey(city, country string) string {
	city = strings.ToLower(strings.TrimSpace(anyascii.Transliterate(city)))
	country = strings.ToLower(strings.TrimSpace(anyascii.Transliterate(country)))
	return city + "|" + country
}

// AirportEntry is a cached airport resolution. Entries are immutable once
// written; a refresh writes a new entry under the same key.
type AirportEntry struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry must be treated as absent.
func (e AirportEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// AirportCache stores resolved IATA codes keyed by normalized location.
// The backing store applies its own TTL expiry; the expiry timestamp on the
// entry is additionally checked at read time so stale data is never returned
// even if the store's sweep lags.
type AirportCache struct {
	cache Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewAirportCache creates an AirportCache with the given entry TTL.
func NewAirportCache(cache Cache, ttl time.Duration) *AirportCache {
	return &AirportCache{cache: cache, ttl: ttl, now: time.Now}
}

// Get returns the cached IATA code for a location, or ErrCacheMiss when the
// key is absent or past its expiry timestamp.
func (a *AirportCache) Get(ctx context.Context, city, country string) (string, error) {
	data, err := a.cache.Get(ctx, AirportKey(city, country))
	if err != nil {
		return "", err
	}

	var entry AirportEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", fmt.Errorf("corrupt airport cache entry: %w", err)
	}
	if entry.Expired(a.now()) {
		return "", ErrCacheMiss
	}
	return entry.Code, nil
}

// Put writes a new entry for a location. Concurrent writes for the same key
// are safe to race: content for a given key is deterministic, so
// last-write-wins is acceptable.
func (a *AirportCache) Put(ctx context.Context, city, country, code string) error {
	now := a.now()
	entry := AirportEntry{
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal airport cache entry: %w", err)
	}
	return a.cache.Set(ctx, AirportKey(city, country), data, a.ttl)
}

// Cache policies and TTLs. Airport-to-city mapping changes effectively
// never, so airport entries are long-lived. Weather goes stale quickly.
const (
	AirportTTL = 30 * 24 * time.Hour
	WeatherTTL = 6 * time.Hour
)

// Cache key generators
func AirportKey(city, country string) string {
	return "airport:" + NormalizeLocationKey(city, country)
}

func WeatherKey(cityID string) string {
	return "weather:" + strings.ToLower(strings.TrimSpace(cityID))
}
