// internal/search/service.go
package search

import (
	"context"
	"time"

	"gift-finder-backend/internal/cache"
	stderrors "gift-finder-backend/internal/common/errors"
	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/common/metrics"
	"gift-finder-backend/internal/common/observability"
	"gift-finder-backend/internal/models"
	"gift-finder-backend/internal/recommend"
)

// MockRating is attached to every recommendation until real review data
// exists.
const MockRating = 4.5

// candidateFetchSize bounds how many index hits are pulled in before
// scoring.
const candidateFetchSize = 200

// GiftStore is the catalog read surface the service depends on.
type GiftStore interface {
	ListGifts(ctx context.Context) ([]models.Gift, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// CandidateIndex narrows the catalog by keyword before scoring. It is
// optional; a nil index means the full catalog snapshot is scored.
type CandidateIndex interface {
	Candidates(ctx context.Context, terms []string, size int) ([]models.Gift, error)
}

// IntentExtractor turns query text into a structured intent.
type IntentExtractor interface {
	Extract(text string) models.Intent
}

// Result is the full answer to one search request.
type Result struct {
	Query           string                  `json:"query"`
	Intent          models.Intent           `json:"intent"`
	Recommendations []models.Recommendation `json:"recommendations"`
	TotalCandidates int                     `json:"totalCandidates"`
	Fallback        bool                    `json:"fallback"`
}

// FilterOptions enumerates the filter boundaries the UI offers.
type FilterOptions struct {
	Ages   []int     `json:"ages"`
	Prices []float64 `json:"prices"`
}

// Service orchestrates the search pipeline: cache, intent extraction,
// candidate retrieval, scoring and ranking.
type Service struct {
	extractor IntentExtractor
	ranker    *recommend.Ranker
	store     GiftStore
	index     CandidateIndex
	cache     *cache.Service
	obs       *observability.Observability
	logger    logger.Logger
	clock     func() time.Time

	defaultLimit int
}

// New wires a search service. index and obs may be nil.
func New(
	extractor IntentExtractor,
	ranker *recommend.Ranker,
	store GiftStore,
	index CandidateIndex,
	cacheSvc *cache.Service,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		extractor: extractor,
		ranker:    ranker,
		store:     store,
		index:     index,
		cache:     cacheSvc,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "search"}),
		clock:     time.Now,

		defaultLimit: recommend.DefaultLimit,
	}
}

// WithClock overrides the time source. Tests use it to pin seasonal
// scoring.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// WithDefaultLimit sets the result limit applied when a request does
// not carry one. Non-positive values keep the built-in default.
func (s *Service) WithDefaultLimit(limit int) *Service {
	if limit > 0 {
		s.defaultLimit = limit
	}
	return s
}

// Search runs the full pipeline for one query. Malformed input is the
// caller's problem; by the time a query reaches here it is non-empty.
func (s *Service) Search(ctx context.Context, query string, filters models.SearchFilters, limit int) (*Result, error) {
	started := s.clock()

	// Normalized before the cache key so an absent limit and an explicit
	// default share an entry.
	if limit <= 0 {
		limit = s.defaultLimit
	}

	var cached Result
	if s.cache.GetSearchResults(ctx, query, filters, limit, &cached) {
		s.recordOutcome(ctx, started, "cached")
		return &cached, nil
	}

	intent := s.resolveIntent(ctx, query)

	catalog, err := s.candidates(ctx, query, intent)
	if err != nil {
		s.recordOutcome(ctx, started, "error")
		return nil, stderrors.NewCatalogUnavailableError(err.Error())
	}

	ranked := s.ranker.Rank(
		recommend.Query{Text: query, Intent: intent},
		catalog, filters, limit, s.clock(),
	)

	recommendations := make([]models.Recommendation, 0, len(ranked.Items))
	for _, item := range ranked.Items {
		recommendations = append(recommendations, models.Recommendation{
			Gift:    item.Gift,
			Score:   item.Score,
			Reasons: item.Reasons,
			Rating:  MockRating,
		})
	}

	result := &Result{
		Query:           query,
		Intent:          intent,
		Recommendations: recommendations,
		TotalCandidates: ranked.TotalCandidates,
		Fallback:        ranked.Fallback,
	}
	s.cache.SetSearchResults(ctx, query, filters, limit, result)

	outcome := "ok"
	if ranked.Fallback {
		outcome = "fallback"
		metrics.FallbacksServed.Inc()
	}
	s.recordOutcome(ctx, started, outcome)

	s.logger.Info("search completed", map[string]interface{}{
		"query":      query,
		"results":    len(recommendations),
		"candidates": ranked.TotalCandidates,
		"fallback":   ranked.Fallback,
	})
	return result, nil
}

// resolveIntent returns the cached intent for a query or extracts and
// caches a fresh one. Extraction never fails, so neither does this.
func (s *Service) resolveIntent(ctx context.Context, query string) models.Intent {
	var intent models.Intent
	if s.cache.GetIntent(ctx, query, &intent) {
		return intent
	}
	intent = s.extractor.Extract(query)
	s.cache.SetIntent(ctx, query, intent)
	return intent
}

// candidates picks the scoring pool. With an index configured it
// searches by interests plus the raw query; an index error or an empty
// hit set falls back to the full catalog so the fallback semantics of
// ranking stay intact.
func (s *Service) candidates(ctx context.Context, query string, intent models.Intent) ([]models.Gift, error) {
	if s.index != nil {
		terms := append([]string{}, intent.Interests...)
		terms = append(terms, query)
		hits, err := s.index.Candidates(ctx, terms, candidateFetchSize)
		if err != nil {
			s.logger.Warn("gift index unavailable, scoring full catalog", map[string]interface{}{
				"error": err.Error(),
			})
		} else if len(hits) > 0 {
			return hits, nil
		}
	}
	return s.store.ListGifts(ctx)
}

// Categories lists the catalog categories, cached.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if s.cache.GetCategories(ctx, &cached) {
		return cached, nil
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, stderrors.NewCatalogUnavailableError(err.Error())
	}
	if categories == nil {
		categories = []models.Category{}
	}
	s.cache.SetCategories(ctx, categories)
	return categories, nil
}

// Filters returns the static filter boundaries.
func (s *Service) Filters() FilterOptions {
	return FilterOptions{
		Ages:   []int{0, 5, 12, 18, 100},
		Prices: []float64{0, 50, 100, 500},
	}
}

func (s *Service) recordOutcome(ctx context.Context, started time.Time, outcome string) {
	elapsed := s.clock().Sub(started)
	metrics.SearchRequests.WithLabelValues(outcome).Inc()
	metrics.SearchDuration.Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordSearchProcessed(ctx, outcome)
		s.obs.RecordSearchDuration(ctx, elapsed, outcome)
	}
}
