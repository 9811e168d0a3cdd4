package ranking

import (
	"strings"
	"unicode/utf8"
)

// QueryAnalyzer splits queries into match words.
type QueryAnalyzer struct {
	minWordLength int
}

// NewQueryAnalyzer creates an analyzer that drops words shorter than minWordLength runes.
func NewQueryAnalyzer(minWordLength int) *QueryAnalyzer {
	return &QueryAnalyzer{minWordLength: minWordLength}
}

// Analyze lowercases the query and splits it on whitespace.
func (qa *QueryAnalyzer) Analyze(query string) *AnalyzedQuery {
	result := &AnalyzedQuery{Original: query, Words: []string{}}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) >= qa.minWordLength {
			result.Words = append(result.Words, w)
		}
	}
	return result
}
