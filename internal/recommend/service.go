package recommend

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pabu-app/focusd/internal/metrics"
	"github.com/pabu-app/focusd/internal/storage"
)

// Service answers "what should I look at for this project". Resolution order
// is cache, then the LLM finder, then the curated fallback. Fallback results
// are cached too so an outage does not mean a model call per request.
type Service struct {
	cache  *Cache
	finder *Finder
	logger zerolog.Logger
}

// NewService builds the recommendation service. finder may be nil when no
// API key is configured; the service then always serves fallback lists.
func NewService(cache *Cache, finder *Finder, logger zerolog.Logger) *Service {
	return &Service{
		cache:  cache,
		finder: finder,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
}

// ForProject returns recommendations for the project. With force set the
// cache is bypassed and overwritten. Never returns an empty list.
func (s *Service) ForProject(ctx context.Context, project storage.Project, force bool) []storage.Recommendation {
	if !force {
		if recs, ok := s.cache.Get(ctx, project.ID); ok {
			s.logger.Debug().Str("project", project.Title).Int("count", len(recs)).Msg("Serving cached recommendations")
			return recs
		}
	}

	if s.finder != nil {
		recs, err := s.finder.Generate(ctx, project)
		if err == nil {
			s.logger.Info().Str("project", project.Title).Int("count", len(recs)).Msg("Generated recommendations")
			s.cache.Put(ctx, project.ID, recs)
			return recs
		}
		s.logger.Warn().Err(err).Str("project", project.Title).Msg("Recommendation generation failed, using fallback")
	}

	metrics.RecommendationFallbacks.Inc()
	recs := FallbackRecommendations(project.Title)
	s.cache.Put(ctx, project.ID, recs)
	return recs
}
