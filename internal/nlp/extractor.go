// internal/nlp/extractor.go
package nlp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/models"
)

// MaxInterests caps the published interest list.
const MaxInterests = 5

// relationshipVocabulary is the closed set of recognized relationship
// terms. Order matters: the first match in this order wins when an
// entity span could name more than one.
var relationshipVocabulary = []string{
	"niece", "nephew", "son", "daughter", "wife", "husband",
	"mom", "dad", "friend", "best friend",
}

// personLikeLabels are the entity labels searched for relationship terms.
var personLikeLabels = map[string]bool{"PERSON": true, "NORP": true}

// publishedEntityLabels are the entity types surfaced on the Intent.
var publishedEntityLabels = map[string]bool{
	"PERSON": true, "ORG": true, "GPE": true, "PRODUCT": true, "EVENT": true,
}

var (
	ageRe      = regexp.MustCompile(`(\d{1,2})(?:-year-old|\s+years?\s+old|\s+yo\b)`)
	digitRe    = regexp.MustCompile(`\d+`)
	wordRe     = regexp.MustCompile(`\b\w+\b`)
	alphaRe    = regexp.MustCompile(`^[a-zA-Z]+$`)
	minWordLen = 3 // tokens of this length or shorter are dropped
)

// Extractor turns raw query text into a structured Intent. All
// dependencies are injected; a nil toolkit puts extraction permanently
// in degraded mode, and a per-call toolkit failure degrades that call.
type Extractor struct {
	toolkit   Toolkit
	sentiment SentimentScorer
	logger    logger.Logger
}

func NewExtractor(toolkit Toolkit, sentiment SentimentScorer, log logger.Logger) *Extractor {
	return &Extractor{
		toolkit:   toolkit,
		sentiment: sentiment,
		logger:    log.WithFields(map[string]interface{}{"component": "intent-extractor"}),
	}
}

// Extract never fails. Blank or whitespace-only input returns the
// neutral Intent.
func (e *Extractor) Extract(text string) models.Intent {
	if strings.TrimSpace(text) == "" {
		return models.NeutralIntent()
	}

	lowered := strings.ToLower(text)

	var analysis *Analysis
	if e.toolkit != nil {
		a, err := e.toolkit.Analyze(lowered)
		if err != nil {
			e.logger.Warn("toolkit analysis failed, using degraded extraction", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			analysis = a
		}
	}

	intent := models.Intent{
		Age:          e.extractAge(lowered, analysis),
		Relationship: e.extractRelationship(lowered, analysis),
		Interests:    e.extractInterests(lowered, analysis),
		Entities:     extractEntities(analysis),
		Sentiment:    e.scoreSentiment(text),
	}
	return intent
}

// extractAge scans for "<N>-year-old", "<N> year(s) old" and "<N> yo";
// the first regex match wins. When the toolkit tagged DATE spans, a
// secondary pass looks for digits inside spans that also mention
// year/old/yo.
func (e *Extractor) extractAge(lowered string, analysis *Analysis) *int {
	if m := ageRe.FindStringSubmatch(lowered); m != nil {
		age, err := strconv.Atoi(m[1])
		if err == nil {
			return &age
		}
	}

	if analysis == nil {
		return nil
	}
	for _, ent := range analysis.Entities {
		if ent.Label != "DATE" {
			continue
		}
		entText := strings.ToLower(ent.Text)
		if !strings.Contains(entText, "year") && !strings.Contains(entText, "old") &&
			!strings.Contains(entText, "yo") {
			continue
		}
		if digits := digitRe.FindString(entText); digits != "" {
			age, err := strconv.Atoi(digits)
			if err == nil {
				return &age
			}
		}
	}
	return nil
}

// extractRelationship first searches person-like entity spans for a
// vocabulary term (substring in either direction), scanning entities in
// document order, then falls back to exact token membership.
func (e *Extractor) extractRelationship(lowered string, analysis *Analysis) *string {
	if analysis != nil {
		for _, ent := range analysis.Entities {
			if !personLikeLabels[ent.Label] {
				continue
			}
			entText := strings.ToLower(ent.Text)
			for _, rel := range relationshipVocabulary {
				if strings.Contains(entText, rel) || strings.Contains(rel, entText) {
					r := rel
					return &r
				}
			}
		}
		for _, tok := range analysis.Tokens {
			tokText := strings.ToLower(tok.Text)
			for _, rel := range relationshipVocabulary {
				if tokText == rel {
					r := rel
					return &r
				}
			}
		}
		return nil
	}

	// Degraded mode: plain token scan, left to right.
	for _, word := range wordRe.FindAllString(lowered, -1) {
		for _, rel := range relationshipVocabulary {
			if word == rel {
				r := rel
				return &r
			}
		}
	}
	return nil
}

// extractInterests keeps noun/adjective/verb lemmas passing the
// stop-word and length filters, or plain alphabetic tokens in degraded
// mode, then ranks by frequency.
func (e *Extractor) extractInterests(lowered string, analysis *Analysis) []string {
	var candidates []string
	if analysis != nil {
		for _, tok := range analysis.Tokens {
			if !isContentTag(tok.Tag) || !hasLetter(tok.Text) {
				continue
			}
			lemma := strings.ToLower(tok.Lemma)
			if lemma == "" {
				lemma = strings.ToLower(tok.Text)
			}
			if IsStopWord(lemma) || len(lemma) <= minWordLen {
				continue
			}
			candidates = append(candidates, lemma)
		}
	} else {
		for _, word := range wordRe.FindAllString(lowered, -1) {
			if !alphaRe.MatchString(word) || IsStopWord(word) || len(word) <= minWordLen {
				continue
			}
			candidates = append(candidates, word)
		}
	}
	return rankInterests(candidates)
}

// rankInterests deduplicates preserving first occurrence, then orders by
// frequency descending with first occurrence breaking ties, keeping the
// top MaxInterests.
func rankInterests(candidates []string) []string {
	counts := make(map[string]int, len(candidates))
	var unique []string
	for _, c := range candidates {
		if counts[c] == 0 {
			unique = append(unique, c)
		}
		counts[c]++
	}

	// Stable sort keeps first-occurrence order among equal counts.
	sort.SliceStable(unique, func(i, j int) bool {
		return counts[unique[i]] > counts[unique[j]]
	})

	if len(unique) > MaxInterests {
		unique = unique[:MaxInterests]
	}
	if unique == nil {
		unique = []string{}
	}
	return unique
}

// extractEntities publishes the toolkit spans of the allowed labels.
// Degraded mode has no tagger, so the list is empty.
func extractEntities(analysis *Analysis) []models.Entity {
	entities := []models.Entity{}
	if analysis == nil {
		return entities
	}
	for _, ent := range analysis.Entities {
		if !publishedEntityLabels[ent.Label] {
			continue
		}
		entities = append(entities, models.Entity{
			Text:  ent.Text,
			Label: ent.Label,
			Start: ent.Start,
			End:   ent.End,
		})
	}
	return entities
}

func (e *Extractor) scoreSentiment(text string) models.Sentiment {
	if e.sentiment == nil {
		return models.NeutralSentiment()
	}
	return e.sentiment.Polarity(text)
}
