package entities

import "time"

// SearchEvent records one search request for analytics
type SearchEvent struct {
	ID          string    `json:"id" db:"id"`
	Query       string    `json:"query" db:"query"`
	UsedAI      bool      `json:"used_ai" db:"used_ai"`
	Confidence  float64   `json:"confidence" db:"confidence"`
	ResultCount int       `json:"result_count" db:"result_count"`
	LatencyMs   int64     `json:"latency_ms" db:"latency_ms"`
	CacheHit    bool      `json:"cache_hit" db:"cache_hit"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
