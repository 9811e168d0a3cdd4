package prompt

import (
	"fmt"
	"strings"

	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/pkg/utils"
)

// previewChars is how much of each paragraph the structure preview shows.
const previewChars = 100

// directiveDocs documents each edit directive to the model, keyed by type.
var directiveDocs = map[models.ActionType]struct{ desc, format, example string }{
	models.ActionFindReplace: {
		"Find and replace text anywhere in the document",
		`"old text":"new text"[:options]`,
		`[ACTION:FIND_REPLACE:"color":"colour":{"replaceAll":true,"matchCase":false}]`},
	models.ActionInsertAtStart: {
		"Insert content at the beginning of the document", `"content"`, ""},
	models.ActionInsertAtEnd: {
		"Insert content at the end of the document", `"content"`, ""},
	models.ActionInsertAfterHeading: {
		"Insert content after the paragraph containing a heading", `"heading text":"content"`, ""},
	models.ActionInsertAtParagraph: {
		"Insert content relative to a paragraph index (before, after or replace)",
		`index:"content":"position"`,
		`[ACTION:INSERT_AT_PARAGRAPH:4:"New paragraph.":"after"]`},
	models.ActionFormatText: {
		"Apply character formatting to every occurrence of a text",
		`"text":formatting`,
		`[ACTION:FORMAT_TEXT:"Important":{"bold":true,"fontSize":14}]`},
	models.ActionCreateTable: {
		"Create an empty table (location is start, end or cursor)", `rows:columns:"location"`,
		`[ACTION:CREATE_TABLE:3:4:"end"]`},
	models.ActionFormatParagraphs: {
		"Apply paragraph formatting to paragraphs matching criteria", `criteria:formatting`,
		`[ACTION:FORMAT_PARAGRAPHS:{"excludeHeadings":true}:{"indentation":{"firstLine":36},"alignment":"Left"}]`},
	models.ActionIndentParagraphs: {
		"Indent the first line of every non-heading paragraph (points)", `amount`,
		`[ACTION:INDENT_PARAGRAPHS:36]`},
	models.ActionAnalyzeFormatting: {
		"Report the document's formatting structure", "", `[ACTION:ANALYZE_FORMATTING]`},
}

// DirectiveGrammar renders the edit directive reference included in action-enabled prompts.
func DirectiveGrammar() string {
	var b strings.Builder
	b.WriteString("EDITING DIRECTIVES:\n")
	b.WriteString("To change the document, include directives in your reply. They are applied in order.\n\n")
	for _, t := range models.ActionTypes {
		d := directiveDocs[t]
		fmt.Fprintf(&b, "- %s: %s\n", t, d.desc)
		if d.format != "" {
			fmt.Fprintf(&b, "  Format: [ACTION:%s:%s]\n", t, d.format)
		} else {
			fmt.Fprintf(&b, "  Format: [ACTION:%s]\n", t)
		}
		if d.example != "" {
			fmt.Fprintf(&b, "  Example: %s\n", d.example)
		}
	}
	b.WriteString("\nQuoted values must not contain ']' characters. Explain each change you make.\n")
	return b.String()
}

// SystemOptions are the inputs to SystemPrompt.
type SystemOptions struct {
	Mode      models.ModeConfig
	Context   string
	Structure string
}

// SystemPrompt composes the mode prompt, the directive grammar when the mode allows
// edits, and the document context and structure when present.
func SystemPrompt(opts SystemOptions) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(opts.Mode.SystemPrompt))
	b.WriteString("\n")
	if opts.Mode.AllowActions {
		b.WriteString("\n")
		b.WriteString(DirectiveGrammar())
	}
	if opts.Context != "" {
		b.WriteString("\nCurrent Document Content:\n")
		b.WriteString(opts.Context)
		b.WriteString("\n")
	}
	if opts.Structure != "" {
		b.WriteString("\nDocument Structure (paragraph index: preview):\n")
		b.WriteString(opts.Structure)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// StructurePreview lists non-blank paragraphs as "[index] preview" lines, at most
// limit lines when limit > 0.
func StructurePreview(paragraphs []models.Paragraph, limit int) string {
	var lines []string
	for _, p := range paragraphs {
		if p.IsBlank() {
			continue
		}
		if limit > 0 && len(lines) == limit {
			break
		}
		lines = append(lines, fmt.Sprintf("[%d] %s", p.Index, utils.Truncate(p.Text, previewChars)))
	}
	return strings.Join(lines, "\n")
}

// UserMessage embeds the selection, when present, ahead of the query.
func UserMessage(query, selection string) string {
	if strings.TrimSpace(selection) == "" {
		return query
	}
	return fmt.Sprintf("Selected text: \"%s\"\n\nUser query: %s", selection, query)
}
