package utils

import (
	"regexp"
	"strings"
)

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

var stopWords = map[string]struct{}{
	"i": {}, "need": {}, "want": {}, "looking": {}, "for": {}, "a": {},
	"an": {}, "the": {}, "is": {}, "are": {}, "and": {}, "or": {},
	"but": {}, "in": {}, "on": {}, "at": {}, "to": {}, "with": {},
}

// ExtractKeywords tokenizes a free-text query into lowercase keywords,
// dropping punctuation, stop words, and words shorter than 3 characters.
// Used as the fallback when the AI backend yields no usable keywords.
func ExtractKeywords(query string) []string {
	cleaned := nonWordChars.ReplaceAllString(strings.ToLower(query), "")

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, ok := stopWords[word]; ok {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}
