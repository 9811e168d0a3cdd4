// Package ranking scores document chunks against a query and an optional selection.
package ranking

import (
	"strings"

	"github.com/hyperjump/quill/internal/models"
)

// AnalyzedQuery holds the lowercased words of a query used for matching.
type AnalyzedQuery struct {
	Original string
	// Words keeps duplicates; a word repeated in the query counts twice.
	Words []string
}

// ScoringContext carries one chunk and the query being scored against it.
type ScoringContext struct {
	Query        *AnalyzedQuery
	Chunk        *models.Chunk
	Content      string // lowercased chunk content
	SectionTitle string // lowercased section title
}

// NewScoringContext builds a context with lowercased fields precomputed.
func NewScoringContext(query *AnalyzedQuery, chunk *models.Chunk) *ScoringContext {
	return &ScoringContext{
		Query:        query,
		Chunk:        chunk,
		Content:      strings.ToLower(chunk.Content),
		SectionTitle: strings.ToLower(chunk.Metadata.SectionTitle),
	}
}

// Scorer produces one component of a chunk's relevance score.
type Scorer interface {
	Name() string
	Score(ctx *ScoringContext) float64
}

// ScoredChunk is a chunk with its final score and per-scorer breakdown.
type ScoredChunk struct {
	Chunk     models.Chunk       `json:"chunk"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
	// SelectionMatch is set when the chunk was chosen because it contains the selection.
	SelectionMatch bool `json:"selection_match,omitempty"`
}
