package chunking

import (
	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/tokens"
)

// DefaultContextWindow is the model context window assumed when none is configured.
const DefaultContextWindow = 128000

// ChunkedOverlapTokens is the overlap carried by the chunked strategy.
const ChunkedOverlapTokens = 200

// DocumentTokens is the sum of per-paragraph token estimates. It is the measure the
// Builder uses, so a document under the full threshold always fits in one chunk.
func DocumentTokens(paragraphs []models.Paragraph) int {
	total := 0
	for _, p := range paragraphs {
		total += tokens.Estimate(p.Text)
	}
	return total
}

// SelectStrategy picks the chunking strategy for a document of docTokens under a
// model window. Documents below 60% of the window are sent whole.
func SelectStrategy(docTokens, window int, mode models.ContextStrategy) models.ChunkingStrategy {
	if window <= 0 {
		window = DefaultContextWindow
	}
	if docTokens*10 < window*6 {
		return models.ChunkingStrategy{
			MaxTokens: window * 8 / 10,
		}
	}
	return models.ChunkingStrategy{
		MaxTokens:           window * 4 / 10,
		OverlapTokens:       ChunkedOverlapTokens,
		PreserveStructure:   true,
		PrioritizeSelection: mode == models.ContextSelection,
	}
}

// IsFull reports whether s is the single-chunk strategy.
func IsFull(s models.ChunkingStrategy) bool {
	return !s.PreserveStructure && s.OverlapTokens == 0
}
