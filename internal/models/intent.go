// internal/models/intent.go
package models

// Entity is a named entity found in the query text. Start and End are
// byte offsets into the original text, half-open [Start,End).
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Sentiment holds a four-field polarity score. Compound is in [-1,1];
// Pos, Neu and Neg are in [0,1] and sum to roughly 1.
type Sentiment struct {
	Compound float64 `json:"compound"`
	Pos      float64 `json:"pos"`
	Neu      float64 `json:"neu"`
	Neg      float64 `json:"neg"`
}

// NeutralSentiment is the sentiment of an empty query.
func NeutralSentiment() Sentiment {
	return Sentiment{Compound: 0, Pos: 0, Neu: 1, Neg: 0}
}

// Intent is the structured form of a free-text gift request. It is built
// fresh per query and never shared between requests.
type Intent struct {
	Age          *int      `json:"age"`
	Relationship *string   `json:"relationship"`
	Interests    []string  `json:"interests"`
	Entities     []Entity  `json:"entities"`
	Sentiment    Sentiment `json:"sentiment"`
}

// NeutralIntent is what blank or whitespace-only input extracts to.
func NeutralIntent() Intent {
	return Intent{
		Interests: []string{},
		Entities:  []Entity{},
		Sentiment: NeutralSentiment(),
	}
}
