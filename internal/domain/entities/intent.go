package entities

import (
	"encoding/json"
	"fmt"
)

// MaxPriceRangeBound caps the upper bound the query processor may emit
const MaxPriceRangeBound = 50000

// PriceRange is an inclusive price interval. It serializes as a
// two-element [min, max] array to match the query processor output.
type PriceRange struct {
	Min float64
	Max float64
}

// Valid reports whether the range satisfies 0 <= min < max <= MaxPriceRangeBound
func (p PriceRange) Valid() bool {
	return p.Min >= 0 && p.Max > p.Min && p.Max <= MaxPriceRangeBound
}

// Contains reports whether price falls within the range (inclusive)
func (p PriceRange) Contains(price float64) bool {
	return price >= p.Min && price <= p.Max
}

// MarshalJSON encodes the range as [min, max]
func (p PriceRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Min, p.Max})
}

// UnmarshalJSON decodes a [min, max] array
func (p *PriceRange) UnmarshalJSON(data []byte) error {
	var bounds [2]float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("price range must be a [min, max] array: %w", err)
	}
	p.Min = bounds[0]
	p.Max = bounds[1]
	return nil
}

// ProcessedQuery holds the structured search facets extracted from a
// free-text query, either by the AI backend or by the local fallback.
type ProcessedQuery struct {
	Category    string      `json:"category,omitempty"`
	Features    []string    `json:"features"`
	PriceRange  *PriceRange `json:"priceRange,omitempty"`
	UseCase     string      `json:"useCase,omitempty"`
	Keywords    []string    `json:"keywords"`
	Explanation string      `json:"explanation"`
	Confidence  float64     `json:"confidence"`
}
