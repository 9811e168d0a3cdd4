package chunking

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/tokens"
)

// sectionMarkers are body-text openings that begin a new section even without a heading style.
var sectionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^chapter\s+\d+`),
	regexp.MustCompile(`(?i)^section\s+\d+`),
	regexp.MustCompile(`(?i)^part\s+\d+`),
	regexp.MustCompile(`(?i)^appendix`),
	regexp.MustCompile(`(?i)^conclusion`),
	regexp.MustCompile(`(?i)^introduction`),
	regexp.MustCompile(`(?i)^abstract`),
	regexp.MustCompile(`(?i)^summary`),
}

// IsSectionBreak reports whether p starts a new section.
func IsSectionBreak(p models.Paragraph) bool {
	if p.Style.IsHeading() {
		return true
	}
	text := strings.TrimSpace(p.Text)
	for _, re := range sectionMarkers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// OutlineEntry is one heading of a document.
type OutlineEntry struct {
	Index int    `json:"index"`
	Level int    `json:"level"`
	Title string `json:"title"`
	// Words counts the body text up to the next heading.
	Words int `json:"words"`
}

// Outline lists the document's leveled headings in order.
func Outline(paragraphs []models.Paragraph) []OutlineEntry {
	var out []OutlineEntry
	for _, p := range paragraphs {
		if p.IsBlank() {
			continue
		}
		if level := p.Style.HeadingLevel(); level > 0 {
			out = append(out, OutlineEntry{Index: p.Index, Level: level, Title: strings.TrimSpace(p.Text)})
			continue
		}
		if len(out) > 0 && !p.Style.IsHeading() {
			out[len(out)-1].Words += tokens.CountWords(p.Text)
		}
	}
	return out
}

// wordsPerPage is the page-count heuristic used for document statistics.
const wordsPerPage = 250

// Stats summarises a document's size.
type Stats struct {
	Words      int `json:"words"`
	Paragraphs int `json:"paragraphs"`
	Headings   int `json:"headings"`
	Pages      int `json:"pages"`
	Tokens     int `json:"tokens"`
}

// ComputeStats counts words, non-blank paragraphs, headings, estimated pages and tokens.
func ComputeStats(paragraphs []models.Paragraph) Stats {
	var s Stats
	for _, p := range paragraphs {
		if p.IsBlank() {
			continue
		}
		s.Paragraphs++
		s.Words += tokens.CountWords(p.Text)
		if p.Style.IsHeading() {
			s.Headings++
		}
	}
	s.Tokens = tokens.ForWords(s.Words)
	s.Pages = (s.Words + wordsPerPage - 1) / wordsPerPage
	if s.Pages < 1 {
		s.Pages = 1
	}
	return s
}

// DocumentSummary renders statistics and the outline as plain text.
func DocumentSummary(paragraphs []models.Paragraph) string {
	s := ComputeStats(paragraphs)
	var b strings.Builder
	fmt.Fprintf(&b, "Document Statistics:\n- %d words across %d pages\n- %d paragraphs (%d headings)\n- ~%d tokens\n\nDocument Structure:",
		s.Words, s.Pages, s.Paragraphs, s.Headings, s.Tokens)
	for i, e := range Outline(paragraphs) {
		fmt.Fprintf(&b, "\n%s%d. %s (%d words)", strings.Repeat("  ", e.Level-1), i+1, e.Title, e.Words)
	}
	return b.String()
}
