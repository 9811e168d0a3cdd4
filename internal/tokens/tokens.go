// Package tokens estimates language-model token counts from word counts.
//
// The estimate is a fixed heuristic of 1.3 tokens per whitespace-separated word,
// rounded up. It is computed in integer arithmetic so results never drift.
package tokens

import (
	"strings"
	"unicode"
)

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Estimate returns ceil(words * 1.3).
func Estimate(text string) int {
	return ForWords(CountWords(text))
}

// ForWords returns the token estimate for a word count.
func ForWords(words int) int {
	if words <= 0 {
		return 0
	}
	return (words*13 + 9) / 10
}

// WordsForBudget returns the largest word count whose estimate fits in budget.
func WordsForBudget(budget int) int {
	if budget <= 0 {
		return 0
	}
	n := budget * 10 / 13
	for ForWords(n+1) <= budget {
		n++
	}
	for n > 0 && ForWords(n) > budget {
		n--
	}
	return n
}

// TruncateWords returns text cut after its n-th word. Spacing between the kept
// words is preserved; leading and trailing whitespace is dropped.
func TruncateWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord {
				count++
				inWord = false
				if count == n {
					return strings.TrimLeftFunc(text[:i], unicode.IsSpace)
				}
			}
			continue
		}
		inWord = true
	}
	return strings.TrimSpace(text)
}
