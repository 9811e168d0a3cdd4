// Package prompt builds the text sent to the language model: the assembled document
// context, the system prompt with the edit directive grammar, and the user message.
package prompt

import (
	"strings"

	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/tokens"
)

// TruncationMarker follows a chunk that was cut to fit the budget.
const TruncationMarker = "[... content truncated ...]"

// Assemble concatenates chunks in order into a context of at most maxTokens estimated
// tokens. With includeMetadata each titled chunk is prefixed by a "## title" header,
// and headers count toward the budget. The first chunk that does not fit is cut to
// the words that do, followed by TruncationMarker, and assembly stops there.
func Assemble(chunks []models.Chunk, maxTokens int, includeMetadata bool) string {
	var b strings.Builder
	used := 0
	markerTokens := tokens.Estimate(TruncationMarker)

	for _, c := range chunks {
		header := ""
		if includeMetadata && c.Metadata.SectionTitle != "" {
			header = "\n## " + c.Metadata.SectionTitle + "\n\n"
		}
		headerTokens := tokens.Estimate(header)
		contentTokens := tokens.Estimate(c.Content)

		if used+headerTokens+contentTokens <= maxTokens {
			b.WriteString(header)
			b.WriteString(c.Content)
			b.WriteString("\n\n")
			used += headerTokens + contentTokens
			continue
		}

		remaining := maxTokens - used - headerTokens - markerTokens
		if cut := tokens.TruncateWords(c.Content, tokens.WordsForBudget(remaining)); cut != "" {
			b.WriteString(header)
			b.WriteString(cut)
			b.WriteString("\n\n" + TruncationMarker + "\n\n")
		}
		break
	}
	return strings.TrimSpace(b.String())
}
