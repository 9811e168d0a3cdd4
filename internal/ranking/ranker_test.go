package ranking

import (
	"testing"

	"github.com/hyperjump/quill/internal/models"
)

func chunk(id, title, content string) models.Chunk {
	return models.Chunk{ID: id, Content: content, Metadata: models.ChunkMetadata{SectionTitle: title}}
}

func ids(chunks []models.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewRanker(t *testing.T) {
	ranker := NewRanker(nil)
	if ranker == nil || ranker.config == nil {
		t.Fatal("Expected non-nil ranker and config")
	}
	ranker = NewRanker(&RankingConfig{TitleWeight: 5})
	if ranker.config.TitleWeight != 5 || ranker.config.ContentWeight != 1 {
		t.Errorf("unexpected config %+v", ranker.config)
	}
}

func TestRanker_AnalyzeQuery(t *testing.T) {
	q := NewRanker(nil).AnalyzeQuery("Is the Dragon in the dragon cave")
	want := []string{"the", "dragon", "the", "dragon", "cave"}
	if !equalIDs(q.Words, want) {
		t.Errorf("Words = %v, want %v", q.Words, want)
	}
}

func TestRanker_SelectionPriority(t *testing.T) {
	chunks := []models.Chunk{
		chunk("chunk_0", "Dragons", "dragon dragon dragon dragon"),
		chunk("chunk_1", "", "It began in Chapter Two, quietly."),
		chunk("chunk_2", "Dragon lore", "dragon dragon"),
	}
	got := NewRanker(nil).Rank(chunks, "dragon", "Chapter Two", 3)
	if !equalIDs(ids(got), []string{"chunk_1"}) {
		t.Errorf("Rank() = %v, want only chunk_1", ids(got))
	}
}

func TestRanker_SelectionCaseInsensitiveAndCapped(t *testing.T) {
	chunks := []models.Chunk{
		chunk("a", "", "the ring"), chunk("b", "", "THE RING"), chunk("c", "", "no match"), chunk("d", "", "The Ring"),
	}
	got := NewRanker(nil).Rank(chunks, "", "  the ring ", 2)
	if !equalIDs(ids(got), []string{"a", "b"}) {
		t.Errorf("Rank() = %v, want [a b]", ids(got))
	}
}

func TestRanker_SelectionWithoutMatchFallsBackToKeywords(t *testing.T) {
	chunks := []models.Chunk{chunk("a", "", "nothing here"), chunk("b", "", "castle walls")}
	got := NewRanker(nil).Rank(chunks, "castle", "unmatched selection", 1)
	if !equalIDs(ids(got), []string{"b"}) {
		t.Errorf("Rank() = %v, want [b]", ids(got))
	}
}

func TestRanker_KeywordScoring(t *testing.T) {
	chunks := []models.Chunk{
		chunk("a", "", "storm storm"),
		chunk("b", "Storm season", "storm"),
		chunk("c", "", "calm"),
		chunk("d", "", "storm storm"),
	}
	scored := NewRanker(nil).RankScored(chunks, "the storm", "", 0)
	if len(scored) != 3 {
		t.Fatalf("default max results should be 3, got %d", len(scored))
	}
	// b: 1 occurrence + 2*1 title = 3; a and d tie at 2 and keep document order.
	if !equalIDs([]string{scored[0].Chunk.ID, scored[1].Chunk.ID, scored[2].Chunk.ID}, []string{"b", "a", "d"}) {
		t.Errorf("order = %v %v %v", scored[0].Chunk.ID, scored[1].Chunk.ID, scored[2].Chunk.ID)
	}
	if scored[0].Score != 3 || scored[0].Breakdown["title"] != 1 || scored[0].Breakdown["content"] != 1 {
		t.Errorf("b scored %+v", scored[0])
	}
}

func TestContentScorer_Substrings(t *testing.T) {
	q := &AnalyzedQuery{Words: []string{"light", "light"}}
	c := chunk("a", "", "Lighthouse light")
	if got := NewContentScorer().Score(NewScoringContext(q, &c)); got != 4 {
		t.Errorf("Score() = %v, want 4", got)
	}
}

func TestTitleScorer_NoTitle(t *testing.T) {
	q := &AnalyzedQuery{Words: []string{"storm"}}
	c := chunk("a", "", "storm")
	if got := NewTitleScorer().Score(NewScoringContext(q, &c)); got != 0 {
		t.Errorf("Score() = %v, want 0", got)
	}
}
