// internal/nlp/extractor_test.go
package nlp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeToolkit struct {
	analysis *Analysis
	err      error
}

func (f *fakeToolkit) Analyze(text string) (*Analysis, error) {
	return f.analysis, f.err
}

func createTestExtractor(t *testing.T, toolkit Toolkit) *Extractor {
	return NewExtractor(toolkit, NewVaderScorer(), logger.NewTestLogger(t))
}

func intPtr(n int) *int { return &n }

// ==========================
// Core Functionality Tests
// ==========================

func TestExtractor_Extract_BlankQuery(t *testing.T) {
	extractor := createTestExtractor(t, nil)

	for _, query := range []string{"", "   ", "\t\n"} {
		intent := extractor.Extract(query)
		assert.Nil(t, intent.Age)
		assert.Nil(t, intent.Relationship)
		assert.Empty(t, intent.Interests)
		assert.Empty(t, intent.Entities)
		assert.Equal(t, models.NeutralSentiment(), intent.Sentiment)
	}
}

func TestExtractor_Extract_Age(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected *int
	}{
		{name: "hyphenated form", query: "gift for my 8-year-old niece", expected: intPtr(8)},
		{name: "plural years old", query: "my son is 12 years old", expected: intPtr(12)},
		{name: "singular year old", query: "a 5 year old who loves trains", expected: intPtr(5)},
		{name: "yo shorthand", query: "something for a 25 yo friend", expected: intPtr(25)},
		{name: "no age", query: "a gift for someone who likes yoga", expected: nil},
		{name: "bare number is not an age", query: "under 50 dollars", expected: nil},
	}

	extractor := createTestExtractor(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := extractor.Extract(tt.query)
			if tt.expected == nil {
				assert.Nil(t, intent.Age)
				return
			}
			require.NotNil(t, intent.Age)
			assert.Equal(t, *tt.expected, *intent.Age)
		})
	}
}

func TestExtractor_Extract_AgeFromDateEntity(t *testing.T) {
	toolkit := &fakeToolkit{analysis: &Analysis{
		Entities: []Span{{Text: "7 years", Label: "DATE", Start: 0, End: 7}},
	}}
	extractor := createTestExtractor(t, toolkit)

	intent := extractor.Extract("a birthday present")
	require.NotNil(t, intent.Age)
	assert.Equal(t, 7, *intent.Age)
}

func TestExtractor_Extract_Relationship(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{name: "nephew", query: "gift for my nephew", expected: "nephew"},
		{name: "wife", query: "anniversary gift for my wife", expected: "wife"},
		{name: "friend", query: "something for my best friend", expected: "friend"},
	}

	extractor := createTestExtractor(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := extractor.Extract(tt.query)
			require.NotNil(t, intent.Relationship)
			assert.Equal(t, tt.expected, *intent.Relationship)
		})
	}

	t.Run("no relationship", func(t *testing.T) {
		intent := extractor.Extract("a nice gardening tool set")
		assert.Nil(t, intent.Relationship)
	})
}

func TestExtractor_Extract_RelationshipFromEntity(t *testing.T) {
	// The entity span mentions the relationship with extra words; the
	// substring match still resolves it.
	toolkit := &fakeToolkit{analysis: &Analysis{
		Entities: []Span{{Text: "my dear wife", Label: "PERSON", Start: 10, End: 22}},
	}}
	extractor := createTestExtractor(t, toolkit)

	intent := extractor.Extract("a gift for my dear wife")
	require.NotNil(t, intent.Relationship)
	assert.Equal(t, "wife", *intent.Relationship)
}

func TestExtractor_Extract_Interests(t *testing.T) {
	t.Run("degraded mode keeps long alphabetic non-stopwords", func(t *testing.T) {
		extractor := createTestExtractor(t, nil)

		intent := extractor.Extract("gaming gaming dinosaurs fun 42")
		// "fun" is too short and "42" is not alphabetic.
		assert.Equal(t, []string{"gaming", "dinosaurs"}, intent.Interests)
	})

	t.Run("frequency ranks ahead of position", func(t *testing.T) {
		extractor := createTestExtractor(t, nil)

		intent := extractor.Extract("drawing science science")
		assert.Equal(t, []string{"science", "drawing"}, intent.Interests)
	})

	t.Run("caps the interest list", func(t *testing.T) {
		extractor := createTestExtractor(t, nil)

		intent := extractor.Extract("gaming drawing cooking gardening photography dinosaurs science")
		assert.Len(t, intent.Interests, MaxInterests)
	})

	t.Run("tagged mode keeps content lemmas only", func(t *testing.T) {
		toolkit := &fakeToolkit{analysis: &Analysis{
			Tokens: []Token{
				{Text: "loves", Tag: "VBZ", Lemma: "love"},
				{Text: "dinosaurs", Tag: "NNS", Lemma: "dinosaur"},
				{Text: "the", Tag: "DT", Lemma: "the"},
				{Text: "with", Tag: "IN", Lemma: "with"},
				{Text: "big", Tag: "JJ", Lemma: "big"},
			},
		}}
		extractor := createTestExtractor(t, toolkit)

		intent := extractor.Extract("loves dinosaurs")
		// "love" passes; "dinosaur" passes; "the"/"with" are not content
		// tags; "big" is too short.
		assert.Equal(t, []string{"love", "dinosaur"}, intent.Interests)
	})
}

func TestExtractor_Extract_Entities(t *testing.T) {
	toolkit := &fakeToolkit{analysis: &Analysis{
		Entities: []Span{
			{Text: "lego", Label: "ORG", Start: 0, End: 4},
			{Text: "last year", Label: "DATE", Start: 10, End: 19},
			{Text: "paris", Label: "GPE", Start: 25, End: 30},
		},
	}}
	extractor := createTestExtractor(t, toolkit)

	intent := extractor.Extract("lego sets from paris")
	require.Len(t, intent.Entities, 2)
	assert.Equal(t, "lego", intent.Entities[0].Text)
	assert.Equal(t, "ORG", intent.Entities[0].Label)
	assert.Equal(t, "paris", intent.Entities[1].Text)
}

func TestExtractor_Extract_ToolkitFailureDegrades(t *testing.T) {
	toolkit := &fakeToolkit{err: errors.New("model not loaded")}
	extractor := createTestExtractor(t, toolkit)

	intent := extractor.Extract("gaming gift for my 12 year old nephew")
	require.NotNil(t, intent.Age)
	assert.Equal(t, 12, *intent.Age)
	require.NotNil(t, intent.Relationship)
	assert.Equal(t, "nephew", *intent.Relationship)
	assert.Contains(t, intent.Interests, "gaming")
	assert.Empty(t, intent.Entities)
}

func TestExtractor_Extract_Deterministic(t *testing.T) {
	extractor := createTestExtractor(t, nil)

	first := extractor.Extract("science kit for my 8-year-old daughter")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, extractor.Extract("science kit for my 8-year-old daughter"))
	}
}

func TestExtractor_Extract_Sentiment(t *testing.T) {
	extractor := createTestExtractor(t, nil)

	happy := extractor.Extract("an amazing wonderful gift she will love")
	assert.Greater(t, happy.Sentiment.Compound, 0.5)

	sad := extractor.Extract("something for a terrible awful horrible week")
	assert.Less(t, sad.Sentiment.Compound, -0.5)
}

func TestVaderScorer_Polarity(t *testing.T) {
	scorer := NewVaderScorer()

	happy := scorer.Polarity("an amazing wonderful gift")
	assert.Greater(t, happy.Compound, 0.0)
	assert.InDelta(t, 1.0, happy.Pos+happy.Neu+happy.Neg, 0.01)

	neutral := scorer.Polarity("a box")
	assert.InDelta(t, 0.0, neutral.Compound, 0.05)
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("for"))
	assert.False(t, IsStopWord("dinosaur"))
	assert.False(t, IsStopWord("gift"))
}
