// Package docsearch provides in-memory full-text search over a document's chunks.
package docsearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/quill/internal/chunking"
	"github.com/hyperjump/quill/internal/models"
)

// DefaultLimit is used when a search asks for no limit.
const DefaultLimit = 10

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("empty search query")

// PassageStrategy chunks documents into passages small enough to be useful hits.
var PassageStrategy = models.ChunkingStrategy{
	MaxTokens:         500,
	PreserveStructure: true,
}

// SearchOptions tune a search. Nil means plain match over content and section.
type SearchOptions struct {
	// SectionBoost multiplies matches in the section title. Values <= 1 disable it.
	SectionBoost float64
	// Fuzzy enables typo tolerance with edit distance Fuzziness (default 1).
	Fuzzy     bool
	Fuzziness int
}

// Hit is one matching passage.
type Hit struct {
	ChunkID    string   `json:"chunk_id"`
	Section    string   `json:"section,omitempty"`
	StartIndex int      `json:"start_index"`
	EndIndex   int      `json:"end_index"`
	Score      float64  `json:"score"`
	Fragments  []string `json:"fragments,omitempty"`
}

// Index is a Bleve memory-only index over chunks.
type Index struct {
	index  bleve.Index
	chunks map[string]models.Chunk
}

// NewIndex creates an empty index.
func NewIndex() (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase and tokenize without stemming, so names match exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("section", textFieldMapping)
	im.AddDocumentMapping("passage", docMapping)
	im.DefaultType = "passage"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &Index{index: index, chunks: make(map[string]models.Chunk)}, nil
}

// Build chunks paragraphs with PassageStrategy and indexes the result.
func Build(ctx context.Context, paragraphs []models.Paragraph) (*Index, error) {
	idx, err := NewIndex()
	if err != nil {
		return nil, err
	}
	chunks := chunking.NewBuilder().Build(paragraphs, PassageStrategy)
	if err := idx.IndexChunks(ctx, chunks); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return idx, nil
}

// IndexChunks adds or replaces chunks by ID in one batch.
func (x *Index) IndexChunks(ctx context.Context, chunks []models.Chunk) error {
	batch := x.index.NewBatch()
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := map[string]interface{}{
			"content": c.Content,
			"section": c.Metadata.SectionTitle,
		}
		if err := batch.Index(c.ID, doc); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
	}
	if err := x.index.Batch(batch); err != nil {
		return fmt.Errorf("index batch: %w", err)
	}
	for _, c := range chunks {
		x.chunks[c.ID] = c
	}
	return nil
}

// Search returns up to limit passages ordered by score.
func (x *Index) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	var o SearchOptions
	if opts != nil {
		o = *opts
	}

	req := bleve.NewSearchRequest(buildQuery(query, o))
	req.Size = limit
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("content")
	results, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]Hit, 0, len(results.Hits))
	for _, h := range results.Hits {
		c := x.chunks[h.ID]
		out = append(out, Hit{
			ChunkID:    h.ID,
			Section:    c.Metadata.SectionTitle,
			StartIndex: c.StartIndex,
			EndIndex:   c.EndIndex,
			Score:      h.Score,
			Fragments:  h.Fragments["content"],
		})
	}
	return out, nil
}

// Chunk returns an indexed chunk by ID.
func (x *Index) Chunk(id string) (models.Chunk, bool) {
	c, ok := x.chunks[id]
	return c, ok
}

// DocCount returns the number of indexed passages.
func (x *Index) DocCount() (uint64, error) {
	return x.index.DocCount()
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}

func buildQuery(query string, o SearchOptions) blevequery.Query {
	section := fieldQuery(query, "section", o)
	if o.SectionBoost > 1 {
		if b, ok := section.(blevequery.BoostableQuery); ok {
			b.SetBoost(o.SectionBoost)
		}
	}
	return bleve.NewDisjunctionQuery(fieldQuery(query, "content", o), section)
}

// fieldQuery is a match query on field, or a disjunction of fuzzy term queries.
func fieldQuery(query, field string, o SearchOptions) blevequery.Query {
	if !o.Fuzzy {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		return mq
	}
	fuzziness := o.Fuzziness
	if fuzziness <= 0 {
		fuzziness = 1
	}
	terms := strings.Fields(strings.ToLower(query))
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}
