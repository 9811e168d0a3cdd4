package actions

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/models"
)

func document() *host.MemoryHost {
	return host.NewMemoryHost([]models.Paragraph{
		{Text: "Chapter One", Style: models.StyleHeading1},
		{Text: "The colour was grey."},
		{Text: "Chapter Two", Style: models.StyleHeading1},
		{Text: "A second colour appeared."},
	})
}

func TestDispatcher_AppliesInOrder(t *testing.T) {
	ctx := context.Background()
	h := document()
	cmds := NewParser().Parse(`Here you go:
[ACTION:FIND_REPLACE:"colour":"color"]
[ACTION:INSERT_AFTER_HEADING:"Chapter Two":"Later that day."]
[ACTION:FIND_REPLACE:"Later":"Earlier"]
[ACTION:INDENT_PARAGRAPHS:24]
[ACTION:ANALYZE_FORMATTING]`)

	report := NewDispatcher().Execute(ctx, h, cmds)
	if len(report.Failures) != 0 {
		t.Fatalf("Failures = %+v", report.Failures)
	}
	if len(report.Results) != 5 {
		t.Fatalf("Results = %d, want 5", len(report.Results))
	}
	for i, r := range report.Results {
		if r.Seq != i || r.Type != cmds[i].Type() {
			t.Errorf("result %d = seq %d type %s", i, r.Seq, r.Type)
		}
	}
	if report.Results[0].Count != 2 {
		t.Errorf("replace count = %d, want 2", report.Results[0].Count)
	}
	if f := report.Results[1].Found; f == nil || !*f {
		t.Error("heading should be found")
	}
	// The third command sees the text inserted by the second.
	if report.Results[2].Count != 1 {
		t.Errorf("dependent replace count = %d, want 1", report.Results[2].Count)
	}
	if report.Results[3].Count != 3 {
		t.Errorf("indented %d paragraphs, want 3", report.Results[3].Count)
	}
	if a := report.Results[4].Analysis; a == nil || a.IndentedParagraphs != 3 || a.TotalParagraphs != 5 {
		t.Errorf("analysis = %+v", a)
	}

	ps, _ := h.ReadParagraphs(ctx)
	got := make([]string, len(ps))
	for i, p := range ps {
		got[i] = p.Text
	}
	want := []string{"Chapter One", "The color was grey.", "Chapter Two", "Earlier that day.", "A second color appeared."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("document = %q", got)
	}
}

// failingHost rejects inserts at the start and otherwise behaves like its MemoryHost.
type failingHost struct {
	*host.MemoryHost
}

func (failingHost) InsertAtStart(context.Context, string) error {
	return errors.New("locked region")
}

func TestDispatcher_FailureDoesNotAbort(t *testing.T) {
	h := failingHost{document()}
	cmds := []models.ActionCommand{
		models.InsertAtStart{Content: "Title"},
		models.InsertAtParagraph{Index: 42, Content: "x", Position: models.PositionAfter},
		models.InsertAtEnd{Content: "Fin."},
	}
	report := NewDispatcher().Execute(context.Background(), h, cmds)
	if len(report.Results) != 1 || report.Results[0].Seq != 2 {
		t.Errorf("Results = %+v", report.Results)
	}
	if len(report.Failures) != 2 {
		t.Fatalf("Failures = %+v", report.Failures)
	}
	if report.Failures[0].Seq != 0 || report.Failures[0].Err != "locked region" {
		t.Errorf("first failure = %+v", report.Failures[0])
	}
	if report.Failures[1].Seq != 1 || !strings.Contains(report.Failures[1].Err, "out of range") {
		t.Errorf("second failure = %+v", report.Failures[1])
	}
}

func TestDispatcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := NewDispatcher().Execute(ctx, document(), []models.ActionCommand{models.InsertAtEnd{Content: "x"}, models.AnalyzeFormatting{}})
	if len(report.Results) != 0 || len(report.Failures) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestDispatcher_Empty(t *testing.T) {
	report := NewDispatcher().Execute(context.Background(), document(), nil)
	if report.Results == nil || report.Failures == nil {
		t.Error("empty report should carry empty, non-nil slices")
	}
}

func TestSummarize(t *testing.T) {
	yes, no := true, false
	report := models.ExecutionReport{
		Results: []models.ActionResult{
			{Command: models.FindReplace{Search: "a", Replace: "b"}, Count: 2},
			{Command: models.InsertAtStart{Content: "x"}},
			{Command: models.InsertAtEnd{Content: "x"}},
			{Command: models.InsertAfterHeading{Heading: "Intro"}, Found: &yes},
			{Command: models.InsertAfterHeading{Heading: "Outro"}, Found: &no},
			{Command: models.InsertAtParagraph{Index: 4}},
			{Command: models.FormatText{Text: "bold me"}, Count: 1},
			{Command: models.CreateTable{Rows: 3, Columns: 4}},
			{Command: models.FormatParagraphs{}, Count: 7},
			{Command: models.IndentParagraphs{Amount: 36}, Count: 5},
			{Command: models.AnalyzeFormatting{}, Analysis: &models.FormattingAnalysis{TotalParagraphs: 12, StylesUsed: []string{"Normal", "Heading1"}}},
		},
		Failures: []models.ActionFailure{{Type: models.ActionInsertAtParagraph, Err: "paragraph index out of range: 42 of 4"}},
	}
	want := `**Actions Performed:**
✅ Replaced "a" with "b"
✅ Inserted content at document beginning
✅ Inserted content at document end
✅ Inserted content after heading "Intro"
✅ Heading "Outro" not found, nothing inserted
✅ Modified paragraph 4
✅ Applied formatting to "bold me"
✅ Created 3x4 table
✅ Applied formatting to 7 paragraphs
✅ Added indentation to 5 paragraphs
✅ Analyzed document formatting (12 paragraphs, 2 styles)

**Not Applied:**
❌ INSERT_AT_PARAGRAPH: paragraph index out of range: 42 of 4`
	if got := Summarize(report); got != want {
		t.Errorf("Summarize() =\n%s\nwant\n%s", got, want)
	}
	if Summarize(models.ExecutionReport{}) != "" {
		t.Error("empty report should summarise to nothing")
	}
}
