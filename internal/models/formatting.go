package models

// FindReplaceOptions mirrors the host search options. ReplaceAll defaults to true when nil.
type FindReplaceOptions struct {
	MatchCase      bool  `json:"matchCase,omitempty"`
	MatchWholeWord bool  `json:"matchWholeWord,omitempty"`
	ReplaceAll     *bool `json:"replaceAll,omitempty"`
}

// ReplaceAllOrDefault returns whether every match should be replaced.
func (o FindReplaceOptions) ReplaceAllOrDefault() bool {
	if o.ReplaceAll != nil {
		return *o.ReplaceAll
	}
	return true
}

// TextFormatting is character formatting applied to every match of a search string.
type TextFormatting struct {
	Bold           *bool    `json:"bold,omitempty"`
	Italic         *bool    `json:"italic,omitempty"`
	Underline      *bool    `json:"underline,omitempty"`
	FontSize       *float64 `json:"fontSize,omitempty"`
	FontColor      string   `json:"fontColor,omitempty"`
	HighlightColor string   `json:"highlightColor,omitempty"`
}

// ParagraphCriteria selects paragraphs by position and style. Empty criteria select all.
type ParagraphCriteria struct {
	ExcludeHeadings bool     `json:"excludeHeadings,omitempty"`
	IncludeOnly     []int    `json:"includeOnly,omitempty"`
	ExcludeIndexes  []int    `json:"excludeIndexes,omitempty"`
	StyleFilter     []string `json:"styleFilter,omitempty"`
}

// Matches reports whether paragraph p at index i is selected.
func (c ParagraphCriteria) Matches(i int, style Style) bool {
	if c.ExcludeHeadings && style.IsHeading() {
		return false
	}
	if c.IncludeOnly != nil && !containsInt(c.IncludeOnly, i) {
		return false
	}
	if containsInt(c.ExcludeIndexes, i) {
		return false
	}
	if c.StyleFilter != nil {
		for _, s := range c.StyleFilter {
			if Style(s) == style {
				return true
			}
		}
		return false
	}
	return true
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Indentation values are in points.
type Indentation struct {
	FirstLine *float64 `json:"firstLine,omitempty"`
	Hanging   *float64 `json:"hanging,omitempty"`
	Left      *float64 `json:"left,omitempty"`
	Right     *float64 `json:"right,omitempty"`
}

type Spacing struct {
	Before      *float64 `json:"before,omitempty"`
	After       *float64 `json:"after,omitempty"`
	LineSpacing *float64 `json:"lineSpacing,omitempty"`
}

type Font struct {
	Name   string   `json:"name,omitempty"`
	Size   *float64 `json:"size,omitempty"`
	Bold   *bool    `json:"bold,omitempty"`
	Italic *bool    `json:"italic,omitempty"`
	Color  string   `json:"color,omitempty"`
}

// ParagraphFormatting is applied to each paragraph selected by ParagraphCriteria.
type ParagraphFormatting struct {
	Indentation *Indentation `json:"indentation,omitempty"`
	Spacing     *Spacing     `json:"spacing,omitempty"`
	Alignment   string       `json:"alignment,omitempty" validate:"omitempty,oneof=Left Center Right Justify"`
	Style       Style        `json:"style,omitempty"`
	Font        *Font        `json:"font,omitempty"`
}

// FormattingAnalysis summarises paragraph formatting across a document.
type FormattingAnalysis struct {
	TotalParagraphs    int            `json:"totalParagraphs"`
	HeadingCount       int            `json:"headingCount"`
	BodyParagraphs     int            `json:"bodyParagraphs"`
	IndentedParagraphs int            `json:"indentedParagraphs"`
	StylesUsed         []string       `json:"stylesUsed"`
	FontAnalysis       map[string]int `json:"fontAnalysis"`
	AlignmentAnalysis  map[string]int `json:"alignmentAnalysis"`
}
