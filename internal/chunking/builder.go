// Package chunking splits a document's paragraphs into token-bounded chunks.
package chunking

import (
	"fmt"
	"strings"

	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/tokens"
	"github.com/hyperjump/quill/pkg/utils"
	"go.uber.org/zap"
)

// Builder groups consecutive paragraphs into chunks no larger than a strategy's MaxTokens.
// Every non-blank paragraph lands in exactly one chunk. A paragraph that alone exceeds
// MaxTokens becomes a singleton chunk of kind paragraph.
type Builder struct {
	logger *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a chunk builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = utils.OrNop(b.logger)
	return b
}

// Build chunks paragraphs under strategy. Output is deterministic: the same input
// always yields the same ids, boundaries and metadata.
func (b *Builder) Build(paragraphs []models.Paragraph, strategy models.ChunkingStrategy) []models.Chunk {
	var (
		chunks    []models.Chunk
		current   []models.Paragraph
		curTokens int
	)
	flush := func(kind models.ChunkKind) {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, newChunk(len(chunks), current, kind))
		current = nil
		curTokens = 0
	}

	for _, p := range paragraphs {
		if p.IsBlank() {
			continue
		}
		pt := tokens.Estimate(p.Text)
		if pt > strategy.MaxTokens {
			flush(models.ChunkSection)
			current = []models.Paragraph{p}
			flush(models.ChunkParagraph)
			b.logger.Debug("oversized paragraph chunked alone",
				zap.Int("index", p.Index), zap.Int("tokens", pt), zap.Int("max_tokens", strategy.MaxTokens))
			continue
		}
		split := len(current) > 0 && curTokens+pt > strategy.MaxTokens
		if !split && strategy.PreserveStructure && len(current) > 0 && IsSectionBreak(p) {
			// break only once the current chunk holds more than 30% of the limit
			split = curTokens*10 > strategy.MaxTokens*3
		}
		if split {
			flush(models.ChunkSection)
		}
		current = append(current, p)
		curTokens += pt
	}
	flush(models.ChunkSection)

	b.logger.Debug("document chunked",
		zap.Int("paragraphs", len(paragraphs)),
		zap.Int("chunks", len(chunks)),
		zap.Int("max_tokens", strategy.MaxTokens),
		zap.Bool("preserve_structure", strategy.PreserveStructure))
	return chunks
}

func newChunk(seq int, paras []models.Paragraph, kind models.ChunkKind) models.Chunk {
	texts := make([]string, len(paras))
	var meta models.ChunkMetadata
	for i, p := range paras {
		texts[i] = p.Text
		if meta.SectionTitle == "" && p.Style.IsHeading() {
			meta.SectionTitle = strings.TrimSpace(p.Text)
		}
		if p.Table {
			meta.HasTable = true
		}
	}
	content := strings.Join(texts, "\n\n")
	meta.WordCount = tokens.CountWords(content)
	return models.Chunk{
		ID:         fmt.Sprintf("chunk_%d", seq),
		Content:    content,
		StartIndex: paras[0].Index,
		EndIndex:   paras[len(paras)-1].Index,
		Kind:       kind,
		Metadata:   meta,
	}
}
