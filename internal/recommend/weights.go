// internal/recommend/weights.go
package recommend

// Default scoring weights. The values carry over from the tuned
// production behavior; they have no documented derivation and are kept
// for parity rather than derived from first principles.
const (
	DefaultWeightExactNameMatch     = 100.0
	DefaultWeightInterestCategory   = 50.0
	DefaultWeightInterestText       = 30.0
	DefaultWeightNameSimilarity     = 30.0
	DefaultWeightDescSimilarity     = 20.0
	DefaultWeightAgeInRange         = 25.0
	DefaultWeightAgeNearRange       = 10.0
	DefaultWeightRelationshipFit    = 15.0
	DefaultWeightPositiveSentiment  = 15.0
	DefaultWeightNegativeSentiment  = 15.0
	DefaultWeightSeasonal           = 10.0
	DefaultWeightPersonEntity       = 20.0
	DefaultWeightOrgEntity          = 15.0
	DefaultWeightCategoryPopularity = 5.0
)

// MinSimilarityRatio gates the name/description similarity signals.
// Below this ratio the signal is treated as unsatisfied so that items
// with no real affinity still score zero and the fallback path stays
// reachable.
const MinSimilarityRatio = 0.3

// AgeNearDistance is the maximum distance (in years) from an age bound
// that still earns the near-range bonus.
const AgeNearDistance = 2

// Weights configures every additive scoring signal. Zeroing a field
// disables its signal.
type Weights struct {
	ExactNameMatch     float64
	InterestCategory   float64
	InterestText       float64
	NameSimilarity     float64
	DescSimilarity     float64
	AgeInRange         float64
	AgeNearRange       float64
	RelationshipFit    float64
	PositiveSentiment  float64
	NegativeSentiment  float64
	Seasonal           float64
	PersonEntity       float64
	OrgEntity          float64
	CategoryPopularity float64
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		ExactNameMatch:     DefaultWeightExactNameMatch,
		InterestCategory:   DefaultWeightInterestCategory,
		InterestText:       DefaultWeightInterestText,
		NameSimilarity:     DefaultWeightNameSimilarity,
		DescSimilarity:     DefaultWeightDescSimilarity,
		AgeInRange:         DefaultWeightAgeInRange,
		AgeNearRange:       DefaultWeightAgeNearRange,
		RelationshipFit:    DefaultWeightRelationshipFit,
		PositiveSentiment:  DefaultWeightPositiveSentiment,
		NegativeSentiment:  DefaultWeightNegativeSentiment,
		Seasonal:           DefaultWeightSeasonal,
		PersonEntity:       DefaultWeightPersonEntity,
		OrgEntity:          DefaultWeightOrgEntity,
		CategoryPopularity: DefaultWeightCategoryPopularity,
	}
}
