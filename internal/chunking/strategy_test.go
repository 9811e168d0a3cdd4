package chunking

import (
	"math/rand"
	"testing"

	"github.com/hyperjump/quill/internal/models"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name      string
		docTokens int
		window    int
		mode      models.ContextStrategy
		want      models.ChunkingStrategy
	}{
		{"small doc is sent whole", 1000, 128000, models.ContextFull,
			models.ChunkingStrategy{MaxTokens: 102400}},
		{"just under threshold", 76799, 128000, models.ContextChunked,
			models.ChunkingStrategy{MaxTokens: 102400}},
		{"at threshold chunks", 76800, 128000, models.ContextChunked,
			models.ChunkingStrategy{MaxTokens: 51200, OverlapTokens: 200, PreserveStructure: true}},
		{"selection mode prioritises selection", 90000, 128000, models.ContextSelection,
			models.ChunkingStrategy{MaxTokens: 51200, OverlapTokens: 200, PreserveStructure: true, PrioritizeSelection: true}},
		{"zero window uses default", 10, 0, models.ContextFull,
			models.ChunkingStrategy{MaxTokens: 102400}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectStrategy(tt.docTokens, tt.window, tt.mode); got != tt.want {
				t.Errorf("SelectStrategy() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectStrategy_FullYieldsOneChunk(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	b := NewBuilder()
	for trial := 0; trial < 20; trial++ {
		paras := randomDoc(r, 10+r.Intn(40))
		window := DocumentTokens(paras)*2 + 1
		s := SelectStrategy(DocumentTokens(paras), window, models.ContextChunked)
		if !IsFull(s) {
			t.Fatalf("expected full strategy, got %+v", s)
		}
		if chunks := b.Build(paras, s); len(chunks) != 1 {
			t.Fatalf("full strategy produced %d chunks", len(chunks))
		}
	}
}

func TestDocumentTokens(t *testing.T) {
	paras := doc(body("one"), body("one two"), body(""))
	if got := DocumentTokens(paras); got != 5 {
		t.Errorf("DocumentTokens() = %d, want 5", got)
	}
}
