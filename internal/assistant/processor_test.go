package assistant

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/journal"
	"github.com/hyperjump/quill/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manuscript() *host.MemoryHost {
	return host.NewMemoryHost([]models.Paragraph{
		{Text: "Chapter One", Style: models.StyleHeading1},
		{Text: "The colour was grey when Anna smiled at the harbour."},
		{Text: "Chapter Two", Style: models.StyleHeading1},
		{Text: "A second colour appeared over the water."},
	})
}

type brokenReader struct{}

var errDisk = errors.New("disk gone")

func (brokenReader) ReadParagraphs(context.Context) ([]models.Paragraph, error) {
	return nil, errDisk
}

func TestProcessor_PrepareAgent(t *testing.T) {
	p := NewProcessor()
	turn, err := p.Prepare(context.Background(), manuscript(), TurnRequest{
		Query:     "Tighten this sentence",
		Selection: "The colour was grey",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(turn.TurnID)
	assert.NoError(t, err)
	assert.Equal(t, "Agent", turn.Mode.Name)
	assert.False(t, turn.Scan.Expanded)
	assert.Contains(t, turn.Context, "A second colour appeared")
	assert.Positive(t, turn.ContextTokens)
	assert.True(t, turn.WholeDocument)
	assert.Contains(t, turn.SystemPrompt, "EDITING DIRECTIVES")
	assert.Contains(t, turn.SystemPrompt, "[1] The colour was grey")
	assert.Equal(t, "Selected text: \"The colour was grey\"\n\nUser query: Tighten this sentence", turn.UserMessage)
	assert.Contains(t, turn.ScanSummary, "Current section only")
}

func TestProcessor_PrepareAskHasNoDirectives(t *testing.T) {
	p := NewProcessor()
	turn, err := p.Prepare(context.Background(), manuscript(), TurnRequest{
		Query: "What is the mood here?",
		Mode:  models.ModeAsk,
	})
	require.NoError(t, err)

	assert.False(t, turn.Mode.AllowActions)
	assert.NotContains(t, turn.SystemPrompt, "EDITING DIRECTIVES")
	assert.NotContains(t, turn.SystemPrompt, "Document Structure")
	assert.Contains(t, turn.SystemPrompt, "Chapter Two")
	assert.Equal(t, "What is the mood here?", turn.UserMessage)
}

func TestProcessor_PrepareExpandedScan(t *testing.T) {
	p := NewProcessor(WithMaxRelated(1))
	turn, err := p.Prepare(context.Background(), manuscript(), TurnRequest{
		Query:     "Is Anna consistent with the earlier chapter?",
		Selection: "A second colour appeared",
	})
	require.NoError(t, err)
	assert.True(t, turn.Scan.Expanded)
	assert.LessOrEqual(t, len(turn.Scan.RelatedChunks), 1)
}

func TestProcessor_PrepareSmallWindowIsChunked(t *testing.T) {
	turn, err := NewProcessor().Prepare(context.Background(), manuscript(), TurnRequest{
		Query:         "Tighten this",
		ContextWindow: 20,
	})
	require.NoError(t, err)
	assert.False(t, turn.WholeDocument)
}

func TestProcessor_PrepareErrors(t *testing.T) {
	p := NewProcessor()
	ctx := context.Background()

	_, err := p.Prepare(ctx, manuscript(), TurnRequest{Query: "  "})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = p.Prepare(ctx, manuscript(), TurnRequest{Query: "hi", Mode: "poet"})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = p.Prepare(ctx, brokenReader{}, TurnRequest{Query: "hi"})
	assert.ErrorIs(t, err, errDisk)
}

const reply = `I changed the spelling and added a closing line.
[ACTION:FIND_REPLACE:"colour":"color"]
[ACTION:CREATE_TABLE:x:y:"end"]
[ACTION:INSERT_AT_END:"The end."]
[ACTION:INSERT_AT_PARAGRAPH:40:"Nowhere":"after"]`

func TestProcessor_ApplyAgentJournalsTurn(t *testing.T) {
	ctx := context.Background()
	j, err := journal.NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	p := NewProcessor(WithJournal(j))
	h := manuscript()
	req := TurnRequest{Document: "novel.md", Query: "Use US spelling"}
	turn, err := p.Prepare(ctx, h, req)
	require.NoError(t, err)

	out, err := p.Apply(ctx, h, ApplyRequest{TurnRequest: req, Reply: reply, Prepared: turn})
	require.NoError(t, err)

	assert.Equal(t, turn.TurnID, out.TurnID)
	assert.True(t, out.Dispatched)
	assert.Len(t, out.Commands, 3)
	assert.Len(t, out.Skipped, 1)
	require.Len(t, out.Report.Results, 2)
	require.Len(t, out.Report.Failures, 1)
	assert.Equal(t, 2, out.Report.Results[0].Count)
	assert.Contains(t, out.Summary, "✅ Replaced \"colour\" with \"color\"")
	assert.Contains(t, out.Summary, "❌ INSERT_AT_PARAGRAPH")

	paras, err := h.ReadParagraphs(ctx)
	require.NoError(t, err)
	require.Len(t, paras, 5)
	assert.Equal(t, "The end.", paras[4].Text)
	assert.Contains(t, paras[1].Text, "color was grey")

	saved, err := j.GetTurn(ctx, out.TurnID)
	require.NoError(t, err)
	assert.Equal(t, "novel.md", saved.Document)
	assert.Equal(t, models.ModeAgent, saved.Mode)
	assert.Equal(t, turn.ContextTokens, saved.ContextTokens)
	applied, failed, skipped := saved.Counts()
	assert.Equal(t, []int{2, 1, 1}, []int{applied, failed, skipped})
}

func TestProcessor_ApplyAskDoesNotEdit(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor()
	h := manuscript()

	out, err := p.Apply(ctx, h, ApplyRequest{
		TurnRequest: TurnRequest{Query: "Any thoughts?", Mode: models.ModeAsk},
		Reply:       reply,
	})
	require.NoError(t, err)

	assert.False(t, out.Dispatched)
	assert.Len(t, out.Commands, 3)
	assert.Empty(t, out.Report.Results)
	assert.Empty(t, out.Summary)
	assert.NotEmpty(t, out.TurnID)

	paras, err := h.ReadParagraphs(ctx)
	require.NoError(t, err)
	assert.Len(t, paras, 4)
	assert.Contains(t, paras[1].Text, "colour")
}

func TestProcessor_ApplyPlainReply(t *testing.T) {
	out, err := NewProcessor().Apply(context.Background(), manuscript(), ApplyRequest{
		Reply: "No changes needed.",
	})
	require.NoError(t, err)
	assert.False(t, out.Dispatched)
	assert.Empty(t, out.Commands)
	assert.Empty(t, out.Skipped)
}

func TestModes(t *testing.T) {
	m := NewModes(nil)
	agent, err := m.Lookup("")
	require.NoError(t, err)
	assert.True(t, agent.AllowActions)
	assert.Equal(t, models.ContextChunked, agent.ContextStrategy)

	ask, err := m.Lookup(models.ModeAsk)
	require.NoError(t, err)
	assert.False(t, ask.AllowActions)
	assert.Equal(t, models.ContextFull, ask.ContextStrategy)

	custom, err := m.Lookup(models.ModeCustom)
	require.NoError(t, err)
	assert.Equal(t, DefaultCustomMode(), custom)

	m = NewModes(&models.ModeConfig{Name: "Editor", ContextStrategy: models.ContextSelection})
	custom, err = m.Lookup(models.ModeCustom)
	require.NoError(t, err)
	assert.Equal(t, "Editor", custom.Name)
	assert.Equal(t, "You are a helpful AI assistant.", custom.SystemPrompt)
	assert.Equal(t, models.ContextSelection, custom.ContextStrategy)
	assert.False(t, custom.AllowActions)
}
