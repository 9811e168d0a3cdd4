// Package models defines core data structures for documents, chunks, scans, and edit actions.
package models

import "strings"

// Style is a host built-in paragraph style name (e.g. "Normal", "Heading2").
type Style string

const (
	StyleNormal   Style = "Normal"
	StyleTitle    Style = "Title"
	StyleSubtitle Style = "Subtitle"
	StyleHeading1 Style = "Heading1"
	StyleHeading2 Style = "Heading2"
	StyleHeading3 Style = "Heading3"
	StyleHeading4 Style = "Heading4"
	StyleHeading5 Style = "Heading5"
	StyleHeading6 Style = "Heading6"
	StyleTable    Style = "Table"
)

// HeadingLevel returns 1-6 for Heading1..Heading6, 1 for Title, and 0 otherwise.
// Subtitle is a heading without a level.
func (s Style) HeadingLevel() int {
	switch s {
	case StyleTitle:
		return 1
	case StyleHeading1, StyleHeading2, StyleHeading3, StyleHeading4, StyleHeading5, StyleHeading6:
		return int(s[len(s)-1] - '0')
	}
	return 0
}

// IsHeading reports whether s is one of the heading styles, Title or Subtitle.
func (s Style) IsHeading() bool {
	return s == StyleSubtitle || s.HeadingLevel() > 0
}

// Paragraph is one block of a document as reported by the host. Read-only to the core.
type Paragraph struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Style Style  `json:"style,omitempty"`
	Table bool   `json:"table,omitempty"`
}

// IsBlank reports whether the paragraph has no visible text.
func (p Paragraph) IsBlank() bool {
	return strings.TrimSpace(p.Text) == ""
}

// ChunkKind classifies how a chunk was formed.
type ChunkKind string

const (
	ChunkParagraph ChunkKind = "paragraph"
	ChunkSection   ChunkKind = "section"
	ChunkPage      ChunkKind = "page"
)

// ChunkMetadata describes a chunk's content.
type ChunkMetadata struct {
	WordCount    int    `json:"word_count"`
	SectionTitle string `json:"section_title,omitempty"`
	HasImages    bool   `json:"has_images"`
	HasTable     bool   `json:"has_table"`
}

// Chunk is a contiguous run of paragraphs [StartIndex, EndIndex], both inclusive.
type Chunk struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	StartIndex int           `json:"start_index"`
	EndIndex   int           `json:"end_index"`
	Kind       ChunkKind     `json:"kind"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// ChunkingStrategy bounds chunk size and controls structure-aware splitting.
type ChunkingStrategy struct {
	MaxTokens           int  `json:"max_tokens"`
	OverlapTokens       int  `json:"overlap_tokens"`
	PreserveStructure   bool `json:"preserve_structure"`
	PrioritizeSelection bool `json:"prioritize_selection"`
}
