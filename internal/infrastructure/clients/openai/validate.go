package openai

import (
	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/pkg/utils"
)

// validateAndClean validates every field of the raw AI payload
// independently. Invalid fields are dropped, not rejected: the result
// is always a usable ProcessedQuery.
func validateAndClean(raw map[string]interface{}, originalQuery string) *entities.ProcessedQuery {
	result := &entities.ProcessedQuery{
		Category:    validateCategory(raw["category"]),
		Features:    stringSlice(raw["features"]),
		PriceRange:  validatePriceRange(raw["priceRange"]),
		UseCase:     stringValue(raw["useCase"]),
		Keywords:    stringSlice(raw["keywords"]),
		Explanation: stringValueOr(raw["explanation"], "AI-processed search query"),
		Confidence:  validateConfidence(raw["confidence"]),
	}

	// Ensure we have at least some keywords
	if len(result.Keywords) == 0 {
		result.Keywords = utils.ExtractKeywords(originalQuery)
	}

	return result
}

// fallbackQuery builds the local low-confidence result used when the
// backend payload cannot be parsed at all.
func fallbackQuery(originalQuery string) *entities.ProcessedQuery {
	return &entities.ProcessedQuery{
		Features:    []string{},
		Keywords:    utils.ExtractKeywords(originalQuery),
		Explanation: "Using basic keyword search as fallback",
		Confidence:  0.3,
	}
}

func validateCategory(value interface{}) string {
	category, ok := value.(string)
	if !ok || !entities.IsValidCategory(category) {
		return ""
	}
	return category
}

func validatePriceRange(value interface{}) *entities.PriceRange {
	bounds, ok := value.([]interface{})
	if !ok || len(bounds) != 2 {
		return nil
	}
	min, minOK := bounds[0].(float64)
	max, maxOK := bounds[1].(float64)
	if !minOK || !maxOK {
		return nil
	}

	pr := entities.PriceRange{Min: min, Max: max}
	if !pr.Valid() {
		return nil
	}
	return &pr
}

func validateConfidence(value interface{}) float64 {
	confidence, ok := value.(float64)
	if !ok {
		return 0.5
	}
	if confidence < 0.1 {
		return 0.1
	}
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}

func stringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return []string{}
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

func stringValue(value interface{}) string {
	s, _ := value.(string)
	return s
}

func stringValueOr(value interface{}, fallback string) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fallback
}
