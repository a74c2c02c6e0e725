// internal/nlp/sentiment.go
package nlp

import (
	"github.com/jonreiter/govader"

	"gift-finder-backend/internal/models"
)

// SentimentScorer maps text to a four-field polarity score.
type SentimentScorer interface {
	Polarity(text string) models.Sentiment
}

// VaderScorer scores sentiment with the VADER lexicon. The underlying
// analyzer is immutable after construction and safe for concurrent use.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer builds the analyzer with its bundled English lexicon.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity scores text. Scoring runs over the original-case input; VADER
// uses capitalization as an intensity signal.
func (v *VaderScorer) Polarity(text string) models.Sentiment {
	s := v.analyzer.PolarityScores(text)
	return models.Sentiment{
		Compound: s.Compound,
		Pos:      s.Positive,
		Neu:      s.Neutral,
		Neg:      s.Negative,
	}
}
