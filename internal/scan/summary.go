package scan

import (
	"fmt"
	"strings"

	"github.com/hyperjump/quill/internal/models"
)

// Summary renders a scan result for the user.
func Summary(r *models.ContextualScanResult) string {
	var b strings.Builder
	b.WriteString("Context Scan Results:\n")
	focus := r.PrimaryChunk.Metadata.SectionTitle
	if focus == "" {
		focus = "Current section"
	}
	fmt.Fprintf(&b, "- Primary focus: %s\n", focus)
	if len(r.RelatedChunks) > 0 {
		fmt.Fprintf(&b, "- Additional context: %d related sections\n", len(r.RelatedChunks))
		fmt.Fprintf(&b, "- Scan reason: %s\n", r.Reason)
		cats := make([]string, len(r.Triggers))
		for i, t := range r.Triggers {
			cats[i] = string(t.Category)
		}
		fmt.Fprintf(&b, "- Triggers detected: %s\n", strings.Join(cats, ", "))
	} else {
		b.WriteString("- Scope: Current section only (no cross-references needed)\n")
	}
	fmt.Fprintf(&b, "- Total context: ~%dk tokens\n", (r.TotalTokens+500)/1000)
	return b.String()
}
