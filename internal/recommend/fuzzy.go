// internal/recommend/fuzzy.go
package recommend

import (
	"github.com/adrg/strutil"
)

// SimilarityThreshold is the minimum ratio for a fuzzy interest match
// against a canonical knowledge-base key.
const SimilarityThreshold = 0.8

// ratcliffObershelp is the gestalt pattern-matching ratio: twice the
// number of characters in recursively matched common substrings over
// the combined input length. It is the ratio the interest and scoring
// thresholds were tuned against; the strutil metrics package does not
// ship it, so it is implemented here against the StringMetric contract.
type ratcliffObershelp struct{}

// The metric is stateless and shared.
var similarityMetric strutil.StringMetric = ratcliffObershelp{}

// Similarity returns a normalized similarity ratio in [0,1].
func Similarity(a, b string) float64 {
	return strutil.Similarity(a, b, similarityMetric)
}

func (ratcliffObershelp) Compare(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

// matchingRunes counts matched characters by anchoring on the leftmost
// longest common substring and recursing into the unmatched regions on
// either side of it.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestCommonSubstring prefers the earliest position in a, then the
// earliest in b, which keeps the anchor choice deterministic.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := range a {
		for j := 1; j <= len(b); j++ {
			if a[i] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > size {
				size = cur[j]
				ai = i - size + 1
				bi = j - size
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

// MatchInterests maps free-form interests to canonical knowledge-base
// keys. Exact key membership wins immediately; otherwise the first key
// in declaration order whose similarity ratio exceeds the threshold is
// taken. Interests with no match contribute nothing.
func MatchInterests(interests []string, kb *KnowledgeBase) []string {
	matched := []string{}
	if kb.Empty() {
		return matched
	}
	for _, interest := range interests {
		if _, ok := kb.Lookup(interest); ok {
			matched = append(matched, interest)
			continue
		}
		for _, key := range kb.Keys() {
			if Similarity(interest, key) > SimilarityThreshold {
				matched = append(matched, key)
				break
			}
		}
	}
	return matched
}

// MaxFallback caps the knowledge-base fallback list.
const MaxFallback = 5

// Fallback builds the knowledge-base recommendation list used when no
// catalog item scores positively. Matched keys are emitted in
// knowledge-base declaration order, capped at MaxFallback templates.
func Fallback(interests []string, kb *KnowledgeBase) []GiftTemplate {
	matched := MatchInterests(interests, kb)
	if len(matched) == 0 {
		return nil
	}

	want := make(map[string]bool, len(matched))
	for _, key := range matched {
		want[key] = true
	}

	var templates []GiftTemplate
	for _, key := range kb.Keys() {
		if !want[key] {
			continue
		}
		entries, _ := kb.Lookup(key)
		templates = append(templates, entries...)
		if len(templates) >= MaxFallback {
			templates = templates[:MaxFallback]
			break
		}
	}
	return templates
}
