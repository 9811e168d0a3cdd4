// Package scan decides how much of a document a query needs and collects the related
// chunks for it.
package scan

import (
	"regexp"

	"github.com/hyperjump/quill/internal/models"
)

// CategoryPatterns maps one trigger category to its ordered detection patterns.
type CategoryPatterns struct {
	Category          models.TriggerCategory
	Patterns          []*regexp.Regexp
	SuggestedSections []string
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// DefaultTable is the detection table, evaluated in order.
var DefaultTable = []CategoryPatterns{
	{
		Category: models.TriggerCharacterReference,
		Patterns: patterns(
			`\b(he|she|they|him|her|them)\s+(said|replied|thought|remembered|decided)`,
			`\b(character|protagonist|antagonist|narrator)`,
			`\b[A-Z][a-z]+\s+(said|replied|thought|walked|ran|smiled)`,
		),
		SuggestedSections: []string{"Character Introductions", "Previous Chapters", "Character Development"},
	},
	{
		Category: models.TriggerPlotConsistency,
		Patterns: patterns(
			`\b(earlier|previously|before|after|later|meanwhile|subsequently)`,
			`\b(chapter|section|part)\s+\d+`,
			`\b(flashback|foreshadowing|callback|reference)`,
			`\b(timeline|chronology|sequence|order)`,
		),
		SuggestedSections: []string{"Timeline", "Previous Events", "Plot Outline"},
	},
	{
		Category: models.TriggerTerminology,
		Patterns: patterns(
			`\b(define|definition|term|concept|explain|meaning)`,
			`\b(technical|jargon|terminology|vocabulary)`,
			`\b(acronym|abbreviation|initialism)`,
		),
		SuggestedSections: []string{"Glossary", "Definitions", "Technical Sections"},
	},
	{
		Category: models.TriggerCrossReference,
		Patterns: patterns(
			`\b(see|refer to|as mentioned|as discussed|as shown)`,
			`\b(above|below|previous|following|next)`,
			`\b(figure|table|chart|diagram|appendix)`,
			`\b(page|section|chapter)\s*\d+`,
		),
		SuggestedSections: []string{"Related Sections"},
	},
	{
		Category: models.TriggerStyleConsistency,
		Patterns: patterns(
			`\b(tone|style|voice|perspective|tense)`,
			`\b(formal|informal|academic|casual|professional)`,
			`\b(first person|second person|third person)`,
		),
		SuggestedSections: []string{"Related Sections"},
	},
}

// crossDocumentPatterns signal query intent that spans the document.
var crossDocumentPatterns = patterns(
	`\b(consistency|inconsistent|contradicts?|conflicts?)`,
	`\b(throughout|across|entire|whole|all)`,
	`\b(other|previous|earlier|later|different)\s+(chapter|section|part)`,
	`\b(character|plot|story|narrative)\s+(development|arc|consistency)`,
	`\b(check|verify|ensure|confirm|validate)`,
)

// namedActor finds capitalised names followed by an action verb. It runs on the
// original-case text so names keep their capitals.
var namedActor = regexp.MustCompile(`\b[A-Z][a-z]+\s+(said|replied|thought|walked|ran|smiled)`)

// candidateName is a single capitalised word.
var candidateName = regexp.MustCompile(`^[A-Z][a-z]+$`)

// characterAction confirms a chunk describes a character acting or speaking.
var characterAction = regexp.MustCompile(`(?i)\b(said|replied|thought|walked|ran|smiled|decided|remembered)`)

// pronouns are capitalised at sentence start but are never names.
var pronouns = map[string]bool{
	"He": true, "She": true, "They": true, "It": true, "We": true, "You": true, "I": true,
	"Him": true, "Her": true, "Them": true, "This": true, "That": true, "Then": true,
}
