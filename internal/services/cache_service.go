package services

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"location-service/internal/metrics"
)

// CacheBackend is the key-value surface the cache service runs on. Satisfied
// by storage.RedisClient and by the in-process MemoryCacheBackend.
type CacheBackend interface {
	GetBytes(key string) ([]byte, error)
	SetBytes(key string, value []byte, expiration time.Duration) error
	Delete(keys ...string) error
}

// CacheService provides TTL caching of structured values on top of a
// CacheBackend. A cache outage must never surface as an API failure: every
// error here is logged and treated as a miss, the document store stays
// authoritative.
type CacheService struct {
	backend    CacheBackend
	defaultTTL time.Duration
	metrics    *metrics.Metrics
}

// NewCacheService creates a cache service with the given default TTL.
func NewCacheService(backend CacheBackend, defaultTTL time.Duration, m *metrics.Metrics) *CacheService {
	return &CacheService{
		backend:    backend,
		defaultTTL: defaultTTL,
		metrics:    m,
	}
}

// Get loads the cached value under key into dest and reports whether it was
// present. Backend errors and undecodable entries count as misses.
func (c *CacheService) Get(key string, dest interface{}) bool {
	data, err := c.backend.GetBytes(key)
	if err != nil {
		log.Printf("Cache get failed for %s, falling through: %v", key, err)
		c.metrics.RecordCacheMiss(keyKind(key))
		return false
	}
	if data == nil {
		c.metrics.RecordCacheMiss(keyKind(key))
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("Cache entry %s is not decodable, treating as miss: %v", key, err)
		c.metrics.RecordCacheMiss(keyKind(key))
		return false
	}
	c.metrics.RecordCacheHit(keyKind(key))
	return true
}

// Set stores value under key with the default TTL, best effort.
func (c *CacheService) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key, best effort. A non-positive ttl means
// the default.
func (c *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Cache set skipped, cannot encode value for %s: %v", key, err)
		return
	}
	if err := c.backend.SetBytes(key, data, ttl); err != nil {
		log.Printf("Cache set failed for %s: %v", key, err)
	}
}

// Delete removes keys, best effort and idempotent.
func (c *CacheService) Delete(keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.backend.Delete(keys...); err != nil {
		log.Printf("Cache delete failed for %v: %v", keys, err)
	}
}

// Memoize is the cache-aside helper: serve dest from cache when present,
// otherwise run produce to fill dest and populate the cache with the result.
func (c *CacheService) Memoize(key string, ttl time.Duration, dest interface{}, produce func() error) error {
	if c.Get(key, dest) {
		return nil
	}
	if err := produce(); err != nil {
		return err
	}
	c.SetWithTTL(key, dest, ttl)
	return nil
}

// keyKind reduces a cache key to its prefix for metric labels, so label
// cardinality stays bounded.
func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
