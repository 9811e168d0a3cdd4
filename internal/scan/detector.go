package scan

import (
	"strings"

	"github.com/hyperjump/quill/internal/models"
)

// Each raw match adds confidenceStep, capped at maxConfidence. A trigger above
// expandAbove forces an expanded scan.
const (
	confidenceStep = 0.2
	maxConfidence  = 1.0
	expandAbove    = 0.6
)

// Detector finds scan triggers in a query and the text around it.
type Detector struct {
	table []CategoryPatterns
}

// NewDetector creates a detector over table, or DefaultTable when table is nil.
func NewDetector(table []CategoryPatterns) *Detector {
	if table == nil {
		table = DefaultTable
	}
	return &Detector{table: table}
}

// Detect returns one trigger per category with at least one match, in table order.
// Matching runs over the lowercased query and current content. Confidence is
// min(raw matches * 0.2, 1.0) and keywords are the distinct matches in first-seen order.
func (d *Detector) Detect(query, currentContent string) []models.ScanTrigger {
	combined := query + " " + currentContent
	lower := strings.ToLower(combined)
	triggers := []models.ScanTrigger{}

	for _, cat := range d.table {
		var matches []string
		for _, re := range cat.Patterns {
			matches = append(matches, re.FindAllString(lower, -1)...)
		}
		if len(matches) == 0 {
			continue
		}
		keywords := dedupe(matches)
		if cat.Category == models.TriggerCharacterReference {
			keywords = dedupe(append(keywords, namedActor.FindAllString(combined, -1)...))
		}
		confidence := float64(len(matches)) * confidenceStep
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
		triggers = append(triggers, models.ScanTrigger{
			Category:          cat.Category,
			Confidence:        confidence,
			Keywords:          keywords,
			SuggestedSections: append([]string(nil), cat.SuggestedSections...),
		})
	}
	return triggers
}

// ShouldExpand reports whether a scan should look beyond the current section: any
// trigger above 0.6 confidence, or a query that asks about the document as a whole.
func ShouldExpand(triggers []models.ScanTrigger, query string) bool {
	for _, t := range triggers {
		if t.Confidence > expandAbove {
			return true
		}
	}
	for _, re := range crossDocumentPatterns {
		if re.MatchString(query) {
			return true
		}
	}
	return false
}

// CharacterNames extracts capitalised candidate names from trigger keywords. A keyword
// such as "Anna walked" yields its first token; pronouns are dropped.
func CharacterNames(triggers []models.ScanTrigger) []string {
	var names []string
	for _, t := range triggers {
		for _, kw := range t.Keywords {
			fields := strings.Fields(kw)
			if len(fields) == 0 {
				continue
			}
			if name := fields[0]; candidateName.MatchString(name) && !pronouns[name] {
				names = append(names, name)
			}
		}
	}
	return dedupe(names)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
