// internal/recommend/ranker.go
package recommend

import (
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/models"
)

const (
	// DefaultLimit is used when the caller passes a non-positive limit.
	DefaultLimit = 10
	// MaxLimit caps the result size regardless of the requested limit.
	MaxLimit = 50
)

// ScoredGift is one ranked catalog item. Position is the item's index
// in the original catalog snapshot and is the deterministic tie-break
// key among equal scores.
type ScoredGift struct {
	Gift     models.Gift `json:"gift"`
	Score    float64     `json:"score"`
	Reasons  []string    `json:"reasons"`
	Position int         `json:"-"`
}

// RankResult is the ordered recommendation list. TotalCandidates is the
// post-filter, pre-truncation count for UI reporting. Fallback marks a
// knowledge-base substitution; an empty item list with Fallback set is a
// valid business outcome, not a fault.
type RankResult struct {
	Items           []ScoredGift `json:"items"`
	TotalCandidates int          `json:"totalCandidates"`
	Fallback        bool         `json:"fallback"`
}

// Ranker scores, orders, filters and truncates a catalog snapshot
// against a query. All invocations are pure over their inputs; the only
// shared state is the immutable knowledge base.
type Ranker struct {
	scorer *Scorer
	kb     *KnowledgeBase
	logger logger.Logger
}

func NewRanker(scorer *Scorer, kb *KnowledgeBase, log logger.Logger) *Ranker {
	return &Ranker{
		scorer: scorer,
		kb:     kb,
		logger: log.WithFields(map[string]interface{}{"component": "ranker"}),
	}
}

// Rank scores every candidate, sorts descending by score with catalog
// position breaking ties, applies the exclusion filters, truncates to
// min(limit, MaxLimit), and substitutes the knowledge-base fallback when
// nothing scores positively. Repeated identical calls yield identical
// ordered output.
func (r *Ranker) Rank(query Query, catalog []models.Gift, filters models.SearchFilters, limit int, now time.Time) RankResult {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	categoryCounts := make(map[string]int, len(catalog))
	for _, gift := range catalog {
		categoryCounts[strings.ToLower(gift.Category)]++
	}

	scored := r.scoreAll(query, catalog, categoryCounts, now)

	// Keep only positive scores, then order by score with the original
	// catalog position as tie-break. The final ordering depends solely
	// on this sort, never on scoring completion order.
	positives := scored[:0]
	for _, sg := range scored {
		if sg.Score > 0 {
			positives = append(positives, sg)
		}
	}
	sort.Slice(positives, func(i, j int) bool {
		if positives[i].Score != positives[j].Score {
			return positives[i].Score > positives[j].Score
		}
		return positives[i].Position < positives[j].Position
	})

	filtered := positives[:0]
	for _, sg := range positives {
		if excluded(sg.Gift, filters) {
			continue
		}
		filtered = append(filtered, sg)
	}

	total := len(filtered)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	if len(filtered) == 0 {
		return r.fallbackResult(query)
	}

	items := make([]ScoredGift, len(filtered))
	copy(items, filtered)
	return RankResult{Items: items, TotalCandidates: total}
}

// scoreAll evaluates the catalog. Items are independent, so the pass is
// parallelized across a bounded set of workers writing by index; the
// output slice order always matches the catalog order.
func (r *Ranker) scoreAll(query Query, catalog []models.Gift, categoryCounts map[string]int, now time.Time) []ScoredGift {
	scored := make([]ScoredGift, len(catalog))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(catalog) {
		workers = len(catalog)
	}
	if workers <= 1 {
		for i, gift := range catalog {
			score, reasons := r.scorer.Score(query, gift, categoryCounts[strings.ToLower(gift.Category)], now)
			scored[i] = ScoredGift{Gift: gift, Score: score, Reasons: reasons, Position: i}
		}
		return scored
	}

	var wg sync.WaitGroup
	indexes := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				gift := catalog[i]
				score, reasons := r.scorer.Score(query, gift, categoryCounts[strings.ToLower(gift.Category)], now)
				scored[i] = ScoredGift{Gift: gift, Score: score, Reasons: reasons, Position: i}
			}
		}()
	}
	for i := range catalog {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return scored
}

// excluded applies the declared filters. A zero filter excludes nothing.
func excluded(gift models.Gift, filters models.SearchFilters) bool {
	if filters.Category != "" && !strings.EqualFold(gift.Category, filters.Category) {
		return true
	}
	if filters.PriceMin != nil && gift.Price < *filters.PriceMin {
		return true
	}
	if filters.PriceMax != nil && gift.Price > *filters.PriceMax {
		return true
	}
	if filters.Age != nil && (*filters.Age < gift.AgeMin || *filters.Age > gift.AgeMax) {
		return true
	}
	return false
}

// fallbackResult substitutes knowledge-base suggestions for an empty
// result. An empty or missing knowledge base yields an empty list with
// the fallback flag still set.
func (r *Ranker) fallbackResult(query Query) RankResult {
	items := []ScoredGift{}
	for i, tpl := range Fallback(query.Intent.Interests, r.kb) {
		items = append(items, ScoredGift{
			Gift:     tpl.Gift(),
			Reasons:  []string{"suggested from the gift knowledge base"},
			Position: i,
		})
	}
	if len(items) == 0 {
		r.logger.Debug("fallback produced no suggestions", map[string]interface{}{
			"interests": query.Intent.Interests,
		})
	}
	return RankResult{Items: items, TotalCandidates: 0, Fallback: true}
}
