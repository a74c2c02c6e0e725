// internal/models/search.go
package models

// SearchFilters narrows the ranked result set. All fields are optional;
// a nil pointer means the filter is not applied.
type SearchFilters struct {
	Category string   `json:"category,omitempty"`
	PriceMin *float64 `json:"priceMin,omitempty"`
	PriceMax *float64 `json:"priceMax,omitempty"`
	Age      *int     `json:"age,omitempty"`
}

// Recommendation is a ranked gift as returned to API clients.
type Recommendation struct {
	Gift    Gift     `json:"gift"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
	Rating  float64  `json:"rating"`
}
