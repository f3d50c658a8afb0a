package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "drops stop words and short words",
			query:    "I need a laptop for college work and gaming",
			expected: []string{"laptop", "college", "work", "gaming"},
		},
		{
			name:     "strips punctuation and lowercases",
			query:    "Noise-Canceling Headphones!",
			expected: []string{"noisecanceling", "headphones"},
		},
		{
			name:     "empty query",
			query:    "",
			expected: nil,
		},
		{
			name:     "only stop words",
			query:    "I need the and or",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractKeywords(tt.query))
		})
	}
}
