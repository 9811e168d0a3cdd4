package ranking

import (
	"sort"
	"strings"

	"github.com/hyperjump/quill/internal/models"
)

// Ranker orders chunks by relevance to a query, preferring chunks that contain the
// user's selection.
type Ranker struct {
	config        *RankingConfig
	analyzer      *QueryAnalyzer
	contentScorer *ContentScorer
	titleScorer   *TitleScorer
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:        config,
		analyzer:      NewQueryAnalyzer(config.MinWordLength),
		contentScorer: NewContentScorer(),
		titleScorer:   NewTitleScorer(),
	}
}

// AnalyzeQuery parses a query string.
func (r *Ranker) AnalyzeQuery(query string) *AnalyzedQuery {
	return r.analyzer.Analyze(query)
}

// Score returns the weighted relevance of chunk for query.
func (r *Ranker) Score(query *AnalyzedQuery, chunk *models.Chunk) float64 {
	return r.scoreWithBreakdown(NewScoringContext(query, chunk)).Score
}

func (r *Ranker) scoreWithBreakdown(ctx *ScoringContext) ScoredChunk {
	content := r.contentScorer.Score(ctx)
	title := r.titleScorer.Score(ctx)
	return ScoredChunk{
		Chunk: *ctx.Chunk,
		Score: r.config.ContentWeight*content + r.config.TitleWeight*title,
		Breakdown: map[string]float64{
			r.contentScorer.Name(): content,
			r.titleScorer.Name():   title,
		},
	}
}

// Rank returns at most maxResults chunks. When selection is non-blank and some chunks
// contain it (case-insensitive), exactly those chunks are returned in document order.
// Otherwise chunks are sorted by score, ties keeping document order.
// maxResults <= 0 uses the configured default.
func (r *Ranker) Rank(chunks []models.Chunk, query, selection string, maxResults int) []models.Chunk {
	scored := r.RankScored(chunks, query, selection, maxResults)
	out := make([]models.Chunk, len(scored))
	for i, s := range scored {
		out[i] = s.Chunk
	}
	return out
}

// RankScored is Rank with scores and breakdowns attached.
func (r *Ranker) RankScored(chunks []models.Chunk, query, selection string, maxResults int) []ScoredChunk {
	if maxResults <= 0 {
		maxResults = r.config.DefaultMaxResults
	}

	if sel := strings.ToLower(strings.TrimSpace(selection)); sel != "" {
		var matches []ScoredChunk
		for _, c := range chunks {
			if strings.Contains(strings.ToLower(c.Content), sel) {
				matches = append(matches, ScoredChunk{Chunk: c, SelectionMatch: true})
			}
		}
		if len(matches) > 0 {
			return capScored(matches, maxResults)
		}
	}

	q := r.AnalyzeQuery(query)
	scored := make([]ScoredChunk, len(chunks))
	for i := range chunks {
		scored[i] = r.scoreWithBreakdown(NewScoringContext(q, &chunks[i]))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return capScored(scored, maxResults)
}

func capScored(s []ScoredChunk, n int) []ScoredChunk {
	if len(s) > n {
		return s[:n]
	}
	return s
}
