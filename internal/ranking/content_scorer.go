package ranking

import "strings"

// ContentScorer counts occurrences of each query word in the chunk content.
type ContentScorer struct{}

// NewContentScorer creates a new ContentScorer.
func NewContentScorer() *ContentScorer {
	return &ContentScorer{}
}

// Name returns the scorer name.
func (s *ContentScorer) Name() string {
	return "content"
}

// Score returns the total number of non-overlapping word occurrences. Words match as
// substrings, so "light" also counts inside "lighthouse".
func (s *ContentScorer) Score(ctx *ScoringContext) float64 {
	if ctx.Query == nil || ctx.Content == "" {
		return 0
	}
	n := 0
	for _, w := range ctx.Query.Words {
		n += strings.Count(ctx.Content, w)
	}
	return float64(n)
}

// TitleScorer counts query words contained in the chunk's section title.
type TitleScorer struct{}

// NewTitleScorer creates a new TitleScorer.
func NewTitleScorer() *TitleScorer {
	return &TitleScorer{}
}

// Name returns the scorer name.
func (s *TitleScorer) Name() string {
	return "title"
}

// Score returns how many query words appear in the section title.
func (s *TitleScorer) Score(ctx *ScoringContext) float64 {
	if ctx.Query == nil || ctx.SectionTitle == "" {
		return 0
	}
	n := 0
	for _, w := range ctx.Query.Words {
		if strings.Contains(ctx.SectionTitle, w) {
			n++
		}
	}
	return float64(n)
}
