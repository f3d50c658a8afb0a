package services

import (
	"sort"
	"strings"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
)

// SearchRankingService scores catalog candidates against a processed
// query. Scoring is deterministic and never fails; missing fields
// simply contribute nothing.
type SearchRankingService struct {
	wCategory    float64
	wFeatureName float64
	wFeatureDesc float64
	wPrice       float64
	wRating      float64
	wStock       float64
}

func NewSearchRankingService() *SearchRankingService {
	return &SearchRankingService{
		wCategory:    0.30,
		wFeatureName: 0.20,
		wFeatureDesc: 0.10,
		wPrice:       0.20,
		wRating:      0.10,
		wStock:       0.05,
	}
}

// Rank orders products by descending score. Ties keep the order the
// catalog returned them in.
func (s *SearchRankingService) Rank(products []*entities.Product, intent *entities.ProcessedQuery) []entities.ScoredProduct {
	scored := s.Score(products, intent)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Score computes per-product scores without reordering. Used when the
// caller requested an explicit sort that must be preserved.
func (s *SearchRankingService) Score(products []*entities.Product, intent *entities.ProcessedQuery) []entities.ScoredProduct {
	if len(products) == 0 {
		return []entities.ScoredProduct{}
	}

	scored := make([]entities.ScoredProduct, len(products))
	for i, p := range products {
		score, breakdown := s.calculateScore(p, intent)
		scored[i] = entities.ScoredProduct{
			Product:        p,
			Score:          score,
			ScoreBreakdown: breakdown,
		}
	}

	return scored
}

func (s *SearchRankingService) calculateScore(p *entities.Product, intent *entities.ProcessedQuery) (float64, map[string]float64) {
	breakdown := make(map[string]float64)
	if intent == nil {
		intent = &entities.ProcessedQuery{}
	}

	// 1. Category match (exact, case-sensitive)
	if intent.Category != "" && p.Category == intent.Category {
		breakdown["category"] = s.wCategory
	}

	// 2. Feature matches, each feature contributes independently
	nameAndBrand := strings.ToLower(p.Name + " " + p.Brand)
	description := strings.ToLower(p.Description)
	featureScore := 0.0
	for _, feature := range intent.Features {
		f := strings.ToLower(feature)
		if f == "" {
			continue
		}
		if strings.Contains(nameAndBrand, f) {
			featureScore += s.wFeatureName
		} else if strings.Contains(description, f) {
			featureScore += s.wFeatureDesc
		}
	}
	if featureScore > 0 {
		breakdown["features"] = featureScore
	}

	// 3. Price range fit, distance penalty when outside the range
	if pr := intent.PriceRange; pr != nil {
		if pr.Contains(p.Price) {
			breakdown["price"] = s.wPrice
		} else {
			distance := p.Price - pr.Max
			if p.Price < pr.Min {
				distance = pr.Min - p.Price
			}
			bound := pr.Max
			if pr.Min > bound {
				bound = pr.Min
			}
			if bound > 0 {
				breakdown["price"] = -(distance / bound) * 0.10
			}
		}
	}

	// 4. Rating signal
	if p.Rating >= 4.0 {
		breakdown["rating"] = s.wRating
	}

	// 5. Availability signal
	if p.StockQuantity > 0 {
		breakdown["stock"] = s.wStock
	}

	total := 0.0
	for _, v := range breakdown {
		total += v
	}
	if total < 0 {
		total = 0
	}

	return total, breakdown
}
