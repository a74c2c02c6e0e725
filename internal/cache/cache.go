// internal/cache/cache.go
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gift-finder-backend/internal/common/config"
	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/common/metrics"
	"gift-finder-backend/internal/models"
)

// Service is a Redis-backed result cache with TTLs per data kind. A nil
// Redis client puts the service in pass-through mode: every Get misses
// and every Set is a no-op, so the rest of the system never needs to
// know whether Redis is up.
type Service struct {
	client        *redis.Client
	logger        logger.Logger
	searchTTL     time.Duration
	intentTTL     time.Duration
	categoriesTTL time.Duration
}

// New builds the cache service. client may be nil.
func New(client *redis.Client, cfg config.CacheConfig, log logger.Logger) *Service {
	return &Service{
		client:        client,
		logger:        log.WithFields(map[string]interface{}{"component": "cache"}),
		searchTTL:     time.Duration(cfg.SearchTTL) * time.Second,
		intentTTL:     time.Duration(cfg.IntentTTL) * time.Second,
		categoriesTTL: time.Duration(cfg.CategoriesTTL) * time.Second,
	}
}

// Key derives a stable cache key from any JSON-serializable payload.
// Go's JSON encoding orders struct fields by declaration and map keys
// lexically, so identical payloads always hash identically.
func Key(prefix string, payload interface{}) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", payload))
	}
	sum := md5.Sum(raw)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Get loads a cached value into dest. Returns false on miss or any
// Redis error; cache failures are never surfaced to callers.
func (s *Service) Get(ctx context.Context, kind, key string, dest interface{}) bool {
	if s.client == nil {
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false
	}

	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache get failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Warn("cache entry corrupt, dropping", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		s.client.Del(ctx, key)
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(kind).Inc()
	return true
}

// Set stores a value with the given TTL. Failures are logged, not
// returned.
func (s *Service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache set marshal failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// InvalidatePattern deletes every key matching a glob pattern and
// returns the number removed.
func (s *Service) InvalidatePattern(ctx context.Context, pattern string) int {
	if s.client == nil {
		return 0
	}

	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return 0
	}
	deleted, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0
	}
	return int(deleted)
}

// ==========================
// Typed helpers per data kind
// ==========================

type searchKeyPayload struct {
	Query   string               `json:"query"`
	Filters models.SearchFilters `json:"filters"`
	Limit   int                  `json:"limit"`
}

// SearchKey is the canonical key for a (query, filters, limit) triple.
func SearchKey(query string, filters models.SearchFilters, limit int) string {
	return Key("search", searchKeyPayload{Query: query, Filters: filters, Limit: limit})
}

func (s *Service) GetSearchResults(ctx context.Context, query string, filters models.SearchFilters, limit int, dest interface{}) bool {
	return s.Get(ctx, "search", SearchKey(query, filters, limit), dest)
}

func (s *Service) SetSearchResults(ctx context.Context, query string, filters models.SearchFilters, limit int, value interface{}) {
	s.Set(ctx, SearchKey(query, filters, limit), value, s.searchTTL)
}

func (s *Service) GetIntent(ctx context.Context, query string, dest *models.Intent) bool {
	return s.Get(ctx, "intent", Key("intent", query), dest)
}

func (s *Service) SetIntent(ctx context.Context, query string, intent models.Intent) {
	s.Set(ctx, Key("intent", query), intent, s.intentTTL)
}

func (s *Service) GetCategories(ctx context.Context, dest *[]models.Category) bool {
	return s.Get(ctx, "categories", "categories:list", dest)
}

func (s *Service) SetCategories(ctx context.Context, categories []models.Category) {
	s.Set(ctx, "categories:list", categories, s.categoriesTTL)
}

// InvalidateSearch drops all cached search results, e.g. after a
// catalog reload.
func (s *Service) InvalidateSearch(ctx context.Context) int {
	return s.InvalidatePattern(ctx, "search:*")
}
