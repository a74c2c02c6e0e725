// internal/recommend/scorer.go
package recommend

import (
	"fmt"
	"strings"
	"time"

	"gift-finder-backend/internal/models"
)

// Query pairs the raw request text with its extracted intent. The text
// travels alongside the intent because the lexical signals (exact match,
// name and description similarity) operate on the query itself.
type Query struct {
	Text   string
	Intent models.Intent
}

// Category groups eligible for the sentiment bonuses.
var (
	positiveSentimentCategories = map[string]bool{
		"gaming": true, "art": true, "science": true, "outdoor": true,
	}
	negativeSentimentCategories = map[string]bool{
		"book": true, "home": true, "comfort": true,
	}
)

// Holiday terms recognized by the seasonal signals.
var (
	winterHolidayTerms = []string{"christmas", "holiday", "winter", "santa", "snow"}
	fallHolidayTerms   = []string{"halloween", "thanksgiving", "pumpkin", "autumn", "harvest", "spooky"}
)

// Scorer computes per-item relevance scores. It is immutable and safe
// for concurrent use; every score is a pure function of its arguments.
type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score evaluates every signal independently and sums the satisfied
// ones. categoryCount is the number of catalog items sharing the item's
// category. Missing intent fields skip their predicates; the method
// never fails. A returned score of zero means no signal fired and the
// item is excluded from the positive result set.
func (s *Scorer) Score(query Query, gift models.Gift, categoryCount int, now time.Time) (float64, []string) {
	var score float64
	reasons := []string{}

	queryLower := strings.ToLower(strings.TrimSpace(query.Text))
	nameLower := strings.ToLower(gift.Name)
	descLower := strings.ToLower(gift.Description)
	categoryLower := strings.ToLower(gift.Category)
	intent := query.Intent

	// Lexical signals against the raw query.
	if queryLower != "" && strings.Contains(nameLower, queryLower) {
		score += s.weights.ExactNameMatch
		reasons = append(reasons, "gift name matches your query exactly")
	}

	if queryLower != "" {
		if ratio := Similarity(queryLower, nameLower); ratio > MinSimilarityRatio {
			score += ratio * s.weights.NameSimilarity
			reasons = append(reasons, fmt.Sprintf("gift name is similar to your query (%.0f%%)", ratio*100))
		}
		if descLower != "" {
			if ratio := Similarity(queryLower, descLower); ratio > MinSimilarityRatio {
				score += ratio * s.weights.DescSimilarity
				reasons = append(reasons, fmt.Sprintf("description is similar to your query (%.0f%%)", ratio*100))
			}
		}
	}

	// Interest signals.
	if interest, ok := firstContained(intent.Interests, categoryLower); ok {
		score += s.weights.InterestCategory
		reasons = append(reasons, fmt.Sprintf("matches interest %q in category", interest))
	}
	combined := nameLower + " " + categoryLower + " " + descLower
	if interest, ok := firstContained(intent.Interests, combined); ok {
		score += s.weights.InterestText
		reasons = append(reasons, fmt.Sprintf("mentions interest %q", interest))
	}

	// Demographic signals.
	if intent.Age != nil {
		age := *intent.Age
		switch {
		case gift.AgeMin <= age && age <= gift.AgeMax:
			score += s.weights.AgeInRange
			reasons = append(reasons, fmt.Sprintf("fits age %d", age))
		case nearBound(age, gift.AgeMin, gift.AgeMax):
			score += s.weights.AgeNearRange
			reasons = append(reasons, fmt.Sprintf("close to the age range for %d", age))
		}
	}

	if intent.Relationship != nil {
		rel := *intent.Relationship
		if fits := relationshipFits(rel, gift); fits {
			score += s.weights.RelationshipFit
			reasons = append(reasons, fmt.Sprintf("good fit for your %s", rel))
		}
	}

	// Sentiment bonuses.
	if intent.Sentiment.Compound > 0.5 && positiveSentimentCategories[categoryLower] {
		score += s.weights.PositiveSentiment
		reasons = append(reasons, "upbeat requests pair well with this category")
	}
	if intent.Sentiment.Compound < -0.5 && negativeSentimentCategories[categoryLower] {
		score += s.weights.NegativeSentiment
		reasons = append(reasons, "a comforting pick for this request")
	}

	// Seasonal signals keyed off the injected date, never the wall clock.
	month := now.Month()
	if (month == time.December || month == time.January) && containsAny(nameLower, winterHolidayTerms) {
		score += s.weights.Seasonal
		reasons = append(reasons, "in season for the winter holidays")
	}
	if (month == time.October || month == time.November) && containsAny(nameLower, fallHolidayTerms) {
		score += s.weights.Seasonal
		reasons = append(reasons, "in season for fall")
	}

	// Entity signals.
	for _, ent := range intent.Entities {
		entText := strings.ToLower(ent.Text)
		if entText == "" {
			continue
		}
		if ent.Label == "PERSON" && strings.Contains(nameLower, entText) {
			score += s.weights.PersonEntity
			reasons = append(reasons, fmt.Sprintf("named for %q", ent.Text))
			break
		}
	}
	for _, ent := range intent.Entities {
		entText := strings.ToLower(ent.Text)
		if entText == "" {
			continue
		}
		if ent.Label == "ORG" && strings.Contains(descLower, entText) {
			score += s.weights.OrgEntity
			reasons = append(reasons, fmt.Sprintf("related to %q", ent.Text))
			break
		}
	}

	// Catalog context.
	if categoryCount > 1 {
		score += s.weights.CategoryPopularity
		reasons = append(reasons, "popular category")
	}

	return score, reasons
}

// firstContained returns the first interest that is a substring of
// target, preserving the intent's interest order.
func firstContained(interests []string, target string) (string, bool) {
	for _, interest := range interests {
		if interest != "" && strings.Contains(target, strings.ToLower(interest)) {
			return interest, true
		}
	}
	return "", false
}

// nearBound reports whether age is within AgeNearDistance of either
// bound of the item's age range.
func nearBound(age, ageMin, ageMax int) bool {
	return abs(age-ageMin) <= AgeNearDistance || abs(age-ageMax) <= AgeNearDistance
}

// relationshipFits applies the per-relationship age heuristics: young
// relatives get child-friendly items, partners and parents get adult
// items.
func relationshipFits(rel string, gift models.Gift) bool {
	switch rel {
	case "niece", "nephew":
		return gift.AgeMin <= 12
	case "wife", "husband":
		return gift.AgeMin >= 18
	case "mom", "dad":
		return gift.AgeMin >= 30
	default:
		return false
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
