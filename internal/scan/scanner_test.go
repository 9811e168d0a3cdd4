package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/tokens"
)

type paragraphs []models.Paragraph

func (p paragraphs) ReadParagraphs(context.Context) ([]models.Paragraph, error) {
	return p, nil
}

type failingReader struct{ err error }

func (f failingReader) ReadParagraphs(context.Context) ([]models.Paragraph, error) {
	return nil, f.err
}

var filler = strings.Repeat("lorem ", 1000)

func novel() paragraphs {
	p := paragraphs{
		{Text: "Chapter 1", Style: models.StyleHeading1},
		{Text: "Anna walked to the lighthouse. She said nothing. " + filler},
		{Text: "Chapter 2", Style: models.StyleHeading1},
		{Text: "Earlier, the storm arrived that night. " + filler},
		{Text: "Chapter 3", Style: models.StyleHeading1},
		{Text: "Anna smiled as the storm passed. " + filler},
	}
	for i := range p {
		p[i].Index = i
	}
	return p
}

func chunkIDs(chunks []models.Chunk) map[string]bool {
	out := make(map[string]bool)
	for _, c := range chunks {
		out[c.ID] = true
	}
	return out
}

func TestScanner_ExpandedScan(t *testing.T) {
	s := NewScanner()
	req := Request{
		Query:         "Check whether Anna is consistent with earlier chapters",
		Selection:     "Anna smiled as the storm passed.",
		ContextWindow: 5000,
		Mode:          models.ContextChunked,
	}
	got, err := s.Analyze(context.Background(), novel(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.PrimaryChunk.ID != "chunk_2" || got.PrimaryChunk.Metadata.SectionTitle != "Chapter 3" {
		t.Errorf("PrimaryChunk = %s %q", got.PrimaryChunk.ID, got.PrimaryChunk.Metadata.SectionTitle)
	}
	if !got.Expanded {
		t.Fatal("query should expand")
	}
	wantReason := "Expanded scan: Character consistency check (1 references found), Plot consistency check (1 timeline references)"
	if got.Reason != wantReason {
		t.Errorf("Reason = %q, want %q", got.Reason, wantReason)
	}
	ids := chunkIDs(got.RelatedChunks)
	if len(ids) != 2 || !ids["chunk_0"] || !ids["chunk_1"] {
		t.Errorf("RelatedChunks = %v, want chunk_0 and chunk_1", ids)
	}
	want := tokens.Estimate(got.PrimaryChunk.Content)
	for _, c := range got.RelatedChunks {
		want += tokens.Estimate(c.Content)
	}
	if got.TotalTokens != want {
		t.Errorf("TotalTokens = %d, want %d", got.TotalTokens, want)
	}
}

func TestScanner_CurrentChapterExcludedFromPlot(t *testing.T) {
	req := Request{
		Query:          "Check whether Anna is consistent with earlier chapters",
		Selection:      "Anna smiled as the storm passed.",
		CurrentChapter: "Chapter 2",
		ContextWindow:  5000,
	}
	got := NewScanner().AnalyzeParagraphs(novel(), req)
	if !strings.Contains(got.Reason, "Plot consistency check (0 timeline references)") {
		t.Errorf("Reason = %q", got.Reason)
	}
	ids := chunkIDs(got.RelatedChunks)
	if len(ids) != 1 || !ids["chunk_0"] {
		t.Errorf("RelatedChunks = %v, want only chunk_0", ids)
	}
}

func TestScanner_NotExpanded(t *testing.T) {
	got := NewScanner().AnalyzeParagraphs(novel(), Request{Query: "what is the weather"})
	if got.Expanded || got.Reason != "Processing current section only" {
		t.Errorf("Expanded = %v, Reason = %q", got.Expanded, got.Reason)
	}
	if got.RelatedChunks == nil || len(got.RelatedChunks) != 0 {
		t.Errorf("RelatedChunks = %v, want empty", got.RelatedChunks)
	}
	// The document fits the default window, so the primary chunk is the whole document.
	if got.PrimaryChunk.StartIndex != 0 || got.PrimaryChunk.EndIndex != 5 {
		t.Errorf("PrimaryChunk range = [%d,%d]", got.PrimaryChunk.StartIndex, got.PrimaryChunk.EndIndex)
	}
}

func TestScanner_SelectionNotInDocument(t *testing.T) {
	got := NewScanner().AnalyzeParagraphs(novel(), Request{Query: "polish", Selection: "  a pasted quote  "})
	if got.PrimaryChunk.ID != "current" || got.PrimaryChunk.Content != "a pasted quote" {
		t.Errorf("PrimaryChunk = %+v", got.PrimaryChunk)
	}
	if got.PrimaryChunk.Metadata.SectionTitle != "Current Section" || got.PrimaryChunk.Metadata.WordCount != 3 {
		t.Errorf("Metadata = %+v", got.PrimaryChunk.Metadata)
	}
}

func TestScanner_EmptyDocument(t *testing.T) {
	got := NewScanner().AnalyzeParagraphs(nil, Request{Query: "check everything"})
	if got.PrimaryChunk.ID != "current" || got.PrimaryChunk.Content != "" {
		t.Errorf("PrimaryChunk = %+v", got.PrimaryChunk)
	}
	if !got.Expanded || got.Reason != "Contextual scanning based on query analysis" {
		t.Errorf("Expanded = %v, Reason = %q", got.Expanded, got.Reason)
	}
	if len(got.RelatedChunks) != 0 || got.TotalTokens != 0 {
		t.Errorf("unexpected context: %+v", got)
	}
}

func TestScanner_ReadFailure(t *testing.T) {
	boom := errors.New("host unavailable")
	got, err := NewScanner().Analyze(context.Background(), failingReader{boom}, Request{Query: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("Analyze() error = %v, want wrapped %v", err, boom)
	}
	if got != nil {
		t.Error("no partial result on read failure")
	}
}

func TestScanner_MaxRelated(t *testing.T) {
	req := Request{
		Query:         "Check whether Anna is consistent with earlier chapters",
		Selection:     "Anna smiled as the storm passed.",
		ContextWindow: 5000,
	}
	got := NewScanner(WithMaxRelated(1)).AnalyzeParagraphs(novel(), req)
	if len(got.RelatedChunks) != 1 {
		t.Errorf("RelatedChunks = %d, want 1", len(got.RelatedChunks))
	}
}

func TestSummary(t *testing.T) {
	r := &models.ContextualScanResult{
		PrimaryChunk:  models.Chunk{Metadata: models.ChunkMetadata{SectionTitle: "Chapter 3"}},
		RelatedChunks: []models.Chunk{{}, {}},
		Triggers:      []models.ScanTrigger{{Category: models.TriggerCharacterReference}, {Category: models.TriggerPlotConsistency}},
		Reason:        "Expanded scan: x",
		TotalTokens:   2600,
	}
	out := Summary(r)
	for _, want := range []string{
		"Primary focus: Chapter 3",
		"Additional context: 2 related sections",
		"Scan reason: Expanded scan: x",
		"Triggers detected: character_reference, plot_consistency",
		"Total context: ~3k tokens",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary missing %q:\n%s", want, out)
		}
	}

	narrow := Summary(&models.ContextualScanResult{TotalTokens: 400})
	if !strings.Contains(narrow, "Primary focus: Current section") || !strings.Contains(narrow, "Current section only") || !strings.Contains(narrow, "~0k tokens") {
		t.Errorf("narrow summary:\n%s", narrow)
	}
}
