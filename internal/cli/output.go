// Package cli provides output writers for the Quill CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/quill/internal/actions"
	"github.com/hyperjump/quill/internal/assistant"
	"github.com/hyperjump/quill/internal/chunking"
	"github.com/hyperjump/quill/internal/docsearch"
	"github.com/hyperjump/quill/internal/journal"
	"github.com/hyperjump/quill/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a --format flag value. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

const rule = "─────────────────────────────────────────────────────────"

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteContext writes a prepared turn.
func WriteContext(w io.Writer, turn *assistant.PreparedTurn, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, turn)
	}
	fmt.Fprintf(w, "Turn %s (%s mode, ~%d context tokens)\n\n", turn.TurnID, turn.Mode.Name, turn.ContextTokens)
	fmt.Fprintln(w, turn.ScanSummary)
	fmt.Fprintln(w, "--- System prompt ---")
	fmt.Fprintln(w, turn.SystemPrompt)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- User message ---")
	fmt.Fprintln(w, turn.UserMessage)
	return nil
}

// WriteOutcome writes the result of applying a reply.
func WriteOutcome(w io.Writer, out *assistant.Outcome, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, out)
	}
	switch {
	case out.Summary != "":
		fmt.Fprintln(w, out.Summary)
	case len(out.Commands) > 0 && !out.Dispatched:
		fmt.Fprintf(w, "%d directives found; this mode does not edit the document.\n", len(out.Commands))
	default:
		fmt.Fprintln(w, "No actions performed.")
	}
	if len(out.Skipped) > 0 {
		fmt.Fprintln(w, "\n**Skipped:**")
		for _, s := range out.Skipped {
			fmt.Fprintf(w, "⚠ %s: %s\n", utils.Truncate(s.Raw, 80), s.Reason)
		}
	}
	fmt.Fprintf(w, "\nTurn: %s\n", out.TurnID)
	return nil
}

// WriteParse writes the directives found in a reply without applying them.
func WriteParse(w io.Writer, res actions.ParseResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "%d directives, %d skipped\n", len(res.Commands), len(res.Skipped))
	for i, c := range res.Commands {
		params, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal command: %w", err)
		}
		fmt.Fprintf(w, "[%d] %s %s\n", i, c.Type(), params)
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "skipped %s: %s\n", utils.Truncate(s.Raw, 80), s.Reason)
	}
	return nil
}

// OutlineReport is the outline command's output.
type OutlineReport struct {
	Document string                  `json:"document"`
	Outline  []chunking.OutlineEntry `json:"outline"`
	Stats    chunking.Stats          `json:"stats"`
}

// WriteOutline writes a document outline with statistics.
func WriteOutline(w io.Writer, r OutlineReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "%s\n", r.Document)
	fmt.Fprintf(w, "%d words, %d paragraphs, %d headings, ~%d pages, ~%d tokens\n\n",
		r.Stats.Words, r.Stats.Paragraphs, r.Stats.Headings, r.Stats.Pages, r.Stats.Tokens)
	if len(r.Outline) == 0 {
		fmt.Fprintln(w, "(no headings)")
		return nil
	}
	for _, e := range r.Outline {
		indent := strings.Repeat("  ", e.Level-1)
		fmt.Fprintf(w, "%s[%d] %s (%d words)\n", indent, e.Index, e.Title, e.Words)
	}
	return nil
}

// WriteSearchHits writes passage search results.
func WriteSearchHits(w io.Writer, query string, hits []docsearch.Hit, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"query": query, "hits": hits})
	}
	fmt.Fprintf(w, "\nFound %d passages for %q\n\n", len(hits), query)
	for i, h := range hits {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | Paragraphs %d-%d\n", i+1, h.Score, h.StartIndex, h.EndIndex)
		if h.Section != "" {
			fmt.Fprintf(w, "Section: %s\n", h.Section)
		}
		for _, f := range h.Fragments {
			fmt.Fprintf(w, "\n%s\n", utils.Truncate(f, 200))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteHistory writes journaled turns, newest first.
func WriteHistory(w io.Writer, turns []*journal.Turn, total int64, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"turns": turns, "total": total})
	}
	fmt.Fprintf(w, "%d of %d turns\n", len(turns), total)
	for _, t := range turns {
		applied, failed, skipped := t.Counts()
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%s  %s  %s  [%s]\n", t.CreatedAt.Format("2006-01-02 15:04:05"), t.ID, t.Document, t.Mode)
		if t.Query != "" {
			fmt.Fprintf(w, "Query: %s\n", utils.Truncate(t.Query, 120))
		}
		fmt.Fprintf(w, "Actions: %d applied, %d failed, %d skipped\n", applied, failed, skipped)
	}
	return nil
}
