package actions

import (
	"fmt"
	"strings"

	"github.com/hyperjump/quill/internal/models"
)

// Summarize renders the user-facing account of an execution. It returns "" when nothing
// was attempted.
func Summarize(r models.ExecutionReport) string {
	if len(r.Results) == 0 && len(r.Failures) == 0 {
		return ""
	}
	var b strings.Builder
	if len(r.Results) > 0 {
		b.WriteString("**Actions Performed:**\n")
		for _, res := range r.Results {
			fmt.Fprintf(&b, "✅ %s\n", Describe(res))
		}
	}
	if len(r.Failures) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("**Not Applied:**\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "❌ %s: %s\n", f.Type, f.Err)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Describe returns the one-line description of an applied command.
func Describe(res models.ActionResult) string {
	switch c := res.Command.(type) {
	case models.FindReplace:
		return fmt.Sprintf("Replaced %q with %q", c.Search, c.Replace)
	case models.InsertAtStart:
		return "Inserted content at document beginning"
	case models.InsertAtEnd:
		return "Inserted content at document end"
	case models.InsertAfterHeading:
		if res.Found != nil && !*res.Found {
			return fmt.Sprintf("Heading %q not found, nothing inserted", c.Heading)
		}
		return fmt.Sprintf("Inserted content after heading %q", c.Heading)
	case models.InsertAtParagraph:
		return fmt.Sprintf("Modified paragraph %d", c.Index)
	case models.FormatText:
		return fmt.Sprintf("Applied formatting to %q", c.Text)
	case models.CreateTable:
		return fmt.Sprintf("Created %dx%d table", c.Rows, c.Columns)
	case models.FormatParagraphs:
		return fmt.Sprintf("Applied formatting to %d paragraphs", res.Count)
	case models.IndentParagraphs:
		return fmt.Sprintf("Added indentation to %d paragraphs", res.Count)
	case models.AnalyzeFormatting:
		if a := res.Analysis; a != nil {
			return fmt.Sprintf("Analyzed document formatting (%d paragraphs, %d styles)", a.TotalParagraphs, len(a.StylesUsed))
		}
		return "Analyzed document formatting"
	}
	return fmt.Sprintf("Applied %s", res.Type)
}
