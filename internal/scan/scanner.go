package scan

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/quill/internal/chunking"
	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/ranking"
	"github.com/hyperjump/quill/internal/tokens"
	"github.com/hyperjump/quill/pkg/utils"
	"go.uber.org/zap"
)

const (
	// DefaultMaxRelated caps the related chunks of an expanded scan.
	DefaultMaxRelated = 5

	currentChunkID    = "current"
	currentChunkTitle = "Current Section"

	reasonCurrentOnly = "Processing current section only"
	reasonNoMatches   = "Contextual scanning based on query analysis"
)

// ExpandedStrategy chunks the document for cross-section scanning.
var ExpandedStrategy = models.ChunkingStrategy{
	MaxTokens:         4000,
	OverlapTokens:     200,
	PreserveStructure: true,
}

// ParagraphReader supplies a document's paragraphs.
type ParagraphReader interface {
	ReadParagraphs(ctx context.Context) ([]models.Paragraph, error)
}

// Request describes one query against the document.
type Request struct {
	Query          string
	Selection      string
	CurrentChapter string
	ContextWindow  int
	Mode           models.ContextStrategy
}

// Scanner picks the primary chunk for a query and, when the query warrants it, the
// related chunks elsewhere in the document.
type Scanner struct {
	builder    *chunking.Builder
	ranker     *ranking.Ranker
	detector   *Detector
	maxRelated int
	logger     *zap.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets a logger for scan decisions.
func WithLogger(l *zap.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// WithMaxRelated caps the related chunks returned by an expanded scan.
func WithMaxRelated(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.maxRelated = n
		}
	}
}

// WithRanker replaces the default ranker.
func WithRanker(r *ranking.Ranker) ScannerOption {
	return func(s *Scanner) { s.ranker = r }
}

// WithDetector replaces the default trigger detector.
func WithDetector(d *Detector) ScannerOption {
	return func(s *Scanner) { s.detector = d }
}

// NewScanner creates a scanner.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{maxRelated: DefaultMaxRelated}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	if s.ranker == nil {
		s.ranker = ranking.NewRanker(nil)
	}
	if s.detector == nil {
		s.detector = NewDetector(nil)
	}
	s.builder = chunking.NewBuilder(chunking.WithLogger(s.logger))
	return s
}

// Analyze reads the document and scans it. A read failure is returned as an error and
// no partial result is produced.
func (s *Scanner) Analyze(ctx context.Context, doc ParagraphReader, req Request) (*models.ContextualScanResult, error) {
	paragraphs, err := doc.ReadParagraphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read paragraphs: %w", err)
	}
	return s.AnalyzeParagraphs(paragraphs, req), nil
}

// AnalyzeParagraphs scans an already-read document.
func (s *Scanner) AnalyzeParagraphs(paragraphs []models.Paragraph, req Request) *models.ContextualScanResult {
	strategy := chunking.SelectStrategy(chunking.DocumentTokens(paragraphs), req.ContextWindow, req.Mode)
	primary := s.primaryChunk(s.builder.Build(paragraphs, strategy), req)

	triggers := s.detector.Detect(req.Query, req.Selection)
	expanded := ShouldExpand(triggers, req.Query)
	scanDecisionsTotal.WithLabelValues(fmt.Sprint(expanded)).Inc()
	for _, t := range triggers {
		triggersDetectedTotal.WithLabelValues(string(t.Category)).Inc()
	}

	result := &models.ContextualScanResult{
		PrimaryChunk:  primary,
		RelatedChunks: []models.Chunk{},
		Triggers:      triggers,
		Expanded:      expanded,
		Reason:        reasonCurrentOnly,
	}
	if expanded {
		result.RelatedChunks, result.Reason = s.related(paragraphs, primary, triggers, req)
	}

	result.TotalTokens = tokens.Estimate(primary.Content)
	for _, c := range result.RelatedChunks {
		result.TotalTokens += tokens.Estimate(c.Content)
	}

	s.logger.Debug("contextual scan",
		zap.String("primary", primary.ID),
		zap.Int("triggers", len(triggers)),
		zap.Bool("expanded", expanded),
		zap.Int("related", len(result.RelatedChunks)),
		zap.String("reason", result.Reason),
		zap.Int("total_tokens", result.TotalTokens))
	return result
}

// primaryChunk is the first chunk containing the selection, a synthetic chunk holding
// the selection when none does, or the best query match when there is no selection.
func (s *Scanner) primaryChunk(chunks []models.Chunk, req Request) models.Chunk {
	if sel := strings.TrimSpace(req.Selection); sel != "" {
		lower := strings.ToLower(sel)
		for _, c := range chunks {
			if strings.Contains(strings.ToLower(c.Content), lower) {
				return c
			}
		}
		return currentChunk(sel)
	}
	if top := s.ranker.Rank(chunks, req.Query, "", 1); len(top) > 0 {
		return top[0]
	}
	return currentChunk("")
}

func currentChunk(content string) models.Chunk {
	return models.Chunk{
		ID:      currentChunkID,
		Content: content,
		Kind:    models.ChunkSection,
		Metadata: models.ChunkMetadata{
			WordCount:    tokens.CountWords(content),
			SectionTitle: currentChunkTitle,
		},
	}
}

// related runs each active category filter over an expanded chunking of the document.
// style_consistency is detected and reported but has no filter.
func (s *Scanner) related(paragraphs []models.Paragraph, primary models.Chunk, triggers []models.ScanTrigger, req Request) ([]models.Chunk, string) {
	all := s.builder.Build(paragraphs, ExpandedStrategy)

	var (
		found   []models.Chunk
		reasons []string
	)
	if ts := byCategory(triggers, models.TriggerCharacterReference); len(ts) > 0 {
		hits := exceptPrimary(characterChunks(all, CharacterNames(ts)), primary)
		found = append(found, hits...)
		reasons = append(reasons, fmt.Sprintf("Character consistency check (%d references found)", len(hits)))
	}
	if ts := byCategory(triggers, models.TriggerPlotConsistency); len(ts) > 0 {
		var hits []models.Chunk
		for _, c := range exceptPrimary(keywordChunks(all, ts), primary) {
			if req.CurrentChapter != "" && c.Metadata.SectionTitle == req.CurrentChapter {
				continue
			}
			hits = append(hits, c)
		}
		found = append(found, hits...)
		reasons = append(reasons, fmt.Sprintf("Plot consistency check (%d timeline references)", len(hits)))
	}
	if ts := byCategory(triggers, models.TriggerTerminology); len(ts) > 0 {
		hits := exceptPrimary(keywordChunks(all, ts), primary)
		found = append(found, hits...)
		reasons = append(reasons, fmt.Sprintf("Terminology consistency (%d definitions found)", len(hits)))
	}
	if ts := byCategory(triggers, models.TriggerCrossReference); len(ts) > 0 {
		hits := exceptPrimary(keywordChunks(all, ts), primary)
		found = append(found, hits...)
		reasons = append(reasons, fmt.Sprintf("Cross-reference validation (%d references)", len(hits)))
	}

	seen := make(map[string]bool)
	unique := make([]models.Chunk, 0, len(found))
	for _, c := range found {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		unique = append(unique, c)
	}
	related := s.ranker.Rank(unique, req.Query, "", s.maxRelated)

	if len(reasons) == 0 {
		return related, reasonNoMatches
	}
	return related, "Expanded scan: " + strings.Join(reasons, ", ")
}

// exceptPrimary drops chunks with the primary chunk's content. The expanded chunking
// assigns its own ids, so the primary section is matched by content.
func exceptPrimary(chunks []models.Chunk, primary models.Chunk) []models.Chunk {
	out := chunks[:0:0]
	for _, c := range chunks {
		if c.Content != primary.Content {
			out = append(out, c)
		}
	}
	return out
}

func byCategory(triggers []models.ScanTrigger, cat models.TriggerCategory) []models.ScanTrigger {
	var out []models.ScanTrigger
	for _, t := range triggers {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out
}

// characterChunks keeps chunks that mention one of names and contain a dialogue or action verb.
func characterChunks(chunks []models.Chunk, names []string) []models.Chunk {
	var out []models.Chunk
	if len(names) == 0 {
		return out
	}
	for _, c := range chunks {
		lower := strings.ToLower(c.Content)
		for _, name := range names {
			if strings.Contains(lower, strings.ToLower(name)) && characterAction.MatchString(c.Content) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// keywordChunks keeps chunks containing any keyword of the given triggers.
func keywordChunks(chunks []models.Chunk, triggers []models.ScanTrigger) []models.Chunk {
	var keywords []string
	for _, t := range triggers {
		for _, kw := range t.Keywords {
			keywords = append(keywords, strings.ToLower(kw))
		}
	}
	keywords = dedupe(keywords)
	var out []models.Chunk
	for _, c := range chunks {
		lower := strings.ToLower(c.Content)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
