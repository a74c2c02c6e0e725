// internal/nlp/toolkit.go
package nlp

import (
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	prose "github.com/jdkato/prose/v2"
)

// Token is a single token with its part-of-speech tag (Penn Treebank)
// and lemma.
type Token struct {
	Text  string
	Tag   string
	Lemma string
}

// Span is a labeled entity span. Start and End are byte offsets into the
// analyzed text, half-open [Start,End).
type Span struct {
	Text  string
	Label string
	Start int
	End   int
}

// Analysis is the output of a Toolkit pass over a query.
type Analysis struct {
	Tokens   []Token
	Entities []Span
}

// Toolkit is the linguistic capability consumed by the extractor. It may
// be absent (nil) or fail per call; either triggers degraded extraction.
type Toolkit interface {
	Analyze(text string) (*Analysis, error)
}

// ProseToolkit implements Toolkit with prose for tokenization, POS
// tagging and NER, and golem for lemmatization. Both models are loaded
// once and are safe for concurrent use.
type ProseToolkit struct {
	lemmatizer *golem.Lemmatizer
}

// NewProseToolkit loads the English lemmatizer dictionary. The prose
// models are loaded lazily by prose itself on first use.
func NewProseToolkit() (*ProseToolkit, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, err
	}
	return &ProseToolkit{lemmatizer: lem}, nil
}

// Analyze runs the full pipeline over text.
func (p *ProseToolkit) Analyze(text string) (*Analysis, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{}
	for _, tok := range doc.Tokens() {
		analysis.Tokens = append(analysis.Tokens, Token{
			Text:  tok.Text,
			Tag:   tok.Tag,
			Lemma: p.lemma(tok.Text),
		})
	}

	// prose entities carry no offsets; recover them by scanning forward
	// through the text so repeated mentions map to distinct spans.
	cursor := 0
	for _, ent := range doc.Entities() {
		idx := strings.Index(text[cursor:], ent.Text)
		if idx < 0 {
			// Retry from the beginning for out-of-order pipeline output.
			idx = strings.Index(text, ent.Text)
			if idx < 0 {
				continue
			}
			cursor = 0
		}
		start := cursor + idx
		end := start + len(ent.Text)
		analysis.Entities = append(analysis.Entities, Span{
			Text:  ent.Text,
			Label: ent.Label,
			Start: start,
			End:   end,
		})
		cursor = end
	}

	return analysis, nil
}

func (p *ProseToolkit) lemma(word string) string {
	if p.lemmatizer == nil {
		return strings.ToLower(word)
	}
	return strings.ToLower(p.lemmatizer.Lemma(word))
}

// isContentTag reports whether a Penn Treebank tag marks a noun,
// adjective or verb.
func isContentTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") ||
		strings.HasPrefix(tag, "JJ") ||
		strings.HasPrefix(tag, "VB")
}

// hasLetter reports whether s contains at least one letter, which is how
// punctuation and whitespace tokens are screened out.
func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
