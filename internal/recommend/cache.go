package recommend

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/pabu-app/focusd/internal/metrics"
	"github.com/pabu-app/focusd/internal/storage"
)

// DefaultCacheTTL is how long a cached recommendation set stays valid.
const DefaultCacheTTL = 24 * time.Hour

const memCacheSize = 128

// Cache keeps recommendation sets per project: an in-process LRU in front of
// the persistent store. Entries older than the TTL are never served; they are
// deleted on sight and the caller regenerates.
type Cache struct {
	store  storage.RecommendationStore
	mem    *lru.Cache[string, storage.RecommendationCacheEntry]
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewCache creates a recommendation cache over the given store. A zero ttl
// means DefaultCacheTTL.
func NewCache(store storage.RecommendationStore, ttl time.Duration, logger zerolog.Logger) *Cache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	mem, _ := lru.New[string, storage.RecommendationCacheEntry](memCacheSize)
	return &Cache{
		store:  store,
		mem:    mem,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("component", "recommend-cache").Logger(),
	}
}

// Get returns the cached recommendations for the project, or false when the
// cache has no fresh entry.
func (c *Cache) Get(ctx context.Context, projectID string) ([]storage.Recommendation, bool) {
	if entry, ok := c.mem.Get(projectID); ok {
		if !entry.Expired(c.now(), c.ttl) {
			metrics.RecommendationCacheHits.Inc()
			return entry.Recommendations, true
		}
		c.mem.Remove(projectID)
	}

	entry, err := c.store.Get(ctx, projectID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn().Err(err).Str("project_id", projectID).Msg("Failed to read recommendation cache")
		}
		metrics.RecommendationCacheMisses.Inc()
		return nil, false
	}

	if entry.Expired(c.now(), c.ttl) || len(entry.Recommendations) == 0 {
		if err := c.store.Delete(ctx, projectID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn().Err(err).Str("project_id", projectID).Msg("Failed to drop expired recommendation cache entry")
		}
		metrics.RecommendationCacheMisses.Inc()
		return nil, false
	}

	c.mem.Add(projectID, *entry)
	metrics.RecommendationCacheHits.Inc()
	return entry.Recommendations, true
}

// Put stores a fresh recommendation set for the project. Write failures are
// logged; the in-process copy still serves until restart.
func (c *Cache) Put(ctx context.Context, projectID string, recs []storage.Recommendation) {
	entry := storage.RecommendationCacheEntry{
		Recommendations: recs,
		Timestamp:       c.now(),
	}
	c.mem.Add(projectID, entry)
	if err := c.store.Put(ctx, projectID, entry); err != nil {
		c.logger.Warn().Err(err).Str("project_id", projectID).Msg("Failed to persist recommendation cache entry")
	}
}

// Invalidate drops any cached entry for the project.
func (c *Cache) Invalidate(ctx context.Context, projectID string) {
	c.mem.Remove(projectID)
	if err := c.store.Delete(ctx, projectID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.logger.Warn().Err(err).Str("project_id", projectID).Msg("Failed to invalidate recommendation cache entry")
	}
}
