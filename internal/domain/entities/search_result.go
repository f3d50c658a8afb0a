package entities

// ScoredProduct couples a product with its relevance score for one search
type ScoredProduct struct {
	Product *Product `json:"product"`
	Score   float64  `json:"score"`

	// ScoreBreakdown records the per-signal contributions behind Score
	ScoreBreakdown map[string]float64 `json:"-"`
}

// SearchResponse is the full result of an AI-assisted product search
type SearchResponse struct {
	Query          string          `json:"query"`
	ProcessedQuery *ProcessedQuery `json:"processedQuery"`
	Explanation    string          `json:"explanation"`
	Products       []ScoredProduct `json:"products"`
	Total          int             `json:"total"`
	Page           int             `json:"page"`
	TotalPages     int             `json:"totalPages"`
	SearchTimeMs   int64           `json:"searchTimeMs"`
	UsedAI         bool            `json:"usedAI"`
	FromCache      bool            `json:"fromCache"`
}
