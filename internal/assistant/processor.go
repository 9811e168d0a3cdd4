package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/quill/internal/actions"
	"github.com/hyperjump/quill/internal/chunking"
	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/journal"
	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/prompt"
	"github.com/hyperjump/quill/internal/scan"
	"github.com/hyperjump/quill/internal/tokens"
	"github.com/hyperjump/quill/pkg/utils"
	"go.uber.org/zap"
)

// ErrEmptyQuery is returned when a turn has no query.
var ErrEmptyQuery = errors.New("empty query")

// DefaultStructureLimit caps the paragraphs listed in the structure preview.
const DefaultStructureLimit = 200

// TurnRequest is one user query against a document.
type TurnRequest struct {
	Document       string
	Query          string
	Selection      string
	CurrentChapter string
	Mode           models.ChatMode
	// ContextWindow overrides the processor's window when > 0.
	ContextWindow int
}

// PreparedTurn is everything needed to call the language model for a turn.
type PreparedTurn struct {
	TurnID        string                       `json:"turn_id"`
	Mode          models.ModeConfig            `json:"mode"`
	Scan          *models.ContextualScanResult `json:"scan"`
	ScanSummary   string                       `json:"scan_summary"`
	Context       string                       `json:"context"`
	ContextTokens int                          `json:"context_tokens"`
	WholeDocument bool                         `json:"whole_document"`
	SystemPrompt  string                       `json:"system_prompt"`
	UserMessage   string                       `json:"user_message"`
}

// ApplyRequest carries a model reply back for a prepared turn.
type ApplyRequest struct {
	TurnRequest
	TurnID string
	Reply  string
	// Prepared is optional; when set its scan outcome is journaled with the turn.
	Prepared *PreparedTurn
}

// Outcome is the result of applying a reply.
type Outcome struct {
	TurnID     string                    `json:"turn_id"`
	Commands   []models.ActionCommand    `json:"commands"`
	Dispatched bool                      `json:"dispatched"`
	Report     models.ExecutionReport    `json:"report"`
	Skipped    []models.SkippedDirective `json:"skipped"`
	Summary    string                    `json:"summary"`
}

// Processor prepares turns and applies replies.
type Processor struct {
	scanner         *scan.Scanner
	parser          *actions.Parser
	dispatcher      *actions.Dispatcher
	journal         journal.Journal
	modes           Modes
	window          int
	includeMetadata bool
	structureLimit  int
	maxRelated      int
	logger          *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger passed down to the scanner, parser and dispatcher.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithJournal records every applied turn.
func WithJournal(j journal.Journal) Option {
	return func(p *Processor) { p.journal = j }
}

// WithModes sets the chat modes.
func WithModes(m Modes) Option {
	return func(p *Processor) { p.modes = m }
}

// WithContextWindow sets the default model context window in tokens.
func WithContextWindow(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.window = n
		}
	}
}

// WithIncludeMetadata adds chunk headers to the assembled context.
func WithIncludeMetadata(b bool) Option {
	return func(p *Processor) { p.includeMetadata = b }
}

// WithMaxRelated caps related chunks in expanded scans.
func WithMaxRelated(n int) Option {
	return func(p *Processor) { p.maxRelated = n }
}

// WithStructureLimit caps the structure preview. Zero lists every paragraph.
func WithStructureLimit(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.structureLimit = n
		}
	}
}

// NewProcessor creates a processor with agent, ask and default custom modes.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		modes:          NewModes(nil),
		window:         chunking.DefaultContextWindow,
		structureLimit: DefaultStructureLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = utils.OrNop(p.logger)
	p.scanner = scan.NewScanner(scan.WithLogger(p.logger), scan.WithMaxRelated(p.maxRelated))
	p.parser = actions.NewParser(actions.WithParserLogger(p.logger))
	p.dispatcher = actions.NewDispatcher(actions.WithDispatcherLogger(p.logger))
	return p
}

// Modes returns the processor's chat modes.
func (p *Processor) Modes() Modes { return p.modes }

// Prepare scans the document for req and builds the prompts for the model call.
func (p *Processor) Prepare(ctx context.Context, doc scan.ParagraphReader, req TurnRequest) (*PreparedTurn, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	mode, err := p.modes.Lookup(req.Mode)
	if err != nil {
		return nil, err
	}
	paragraphs, err := doc.ReadParagraphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read paragraphs: %w", err)
	}

	window := req.ContextWindow
	if window <= 0 {
		window = p.window
	}
	result := p.scanner.AnalyzeParagraphs(paragraphs, scan.Request{
		Query:          req.Query,
		Selection:      req.Selection,
		CurrentChapter: req.CurrentChapter,
		ContextWindow:  window,
		Mode:           mode.ContextStrategy,
	})

	strategy := chunking.SelectStrategy(chunking.DocumentTokens(paragraphs), window, mode.ContextStrategy)
	chunks := append([]models.Chunk{result.PrimaryChunk}, result.RelatedChunks...)
	docContext := prompt.Assemble(chunks, strategy.MaxTokens, p.includeMetadata)

	var structure string
	if mode.AllowActions {
		structure = prompt.StructurePreview(paragraphs, p.structureLimit)
	}

	turn := &PreparedTurn{
		TurnID:        uuid.NewString(),
		Mode:          mode,
		Scan:          result,
		ScanSummary:   scan.Summary(result),
		Context:       docContext,
		ContextTokens: tokens.Estimate(docContext),
		WholeDocument: chunking.IsFull(strategy),
		SystemPrompt: prompt.SystemPrompt(prompt.SystemOptions{
			Mode:      mode,
			Context:   docContext,
			Structure: structure,
		}),
		UserMessage: prompt.UserMessage(req.Query, req.Selection),
	}
	turnsTotal.WithLabelValues(string(modeName(req.Mode)), "prepare").Inc()
	p.logger.Debug("turn prepared",
		zap.String("turn_id", turn.TurnID),
		zap.String("document", req.Document),
		zap.String("mode", mode.Name),
		zap.Bool("expanded", result.Expanded),
		zap.Bool("whole_document", turn.WholeDocument),
		zap.Int("context_tokens", turn.ContextTokens))
	return turn, nil
}

// Apply parses the reply and, when the mode allows edits, dispatches the directives
// against h in order. The turn is journaled when a journal is configured; a journal
// failure is logged and does not undo applied edits.
func (p *Processor) Apply(ctx context.Context, h host.DocumentHost, req ApplyRequest) (*Outcome, error) {
	mode, err := p.modes.Lookup(req.Mode)
	if err != nil {
		return nil, err
	}
	parsed := p.parser.ParseReport(req.Reply)

	out := &Outcome{
		TurnID:   req.TurnID,
		Commands: parsed.Commands,
		Skipped:  parsed.Skipped,
		Report: models.ExecutionReport{
			Results:  []models.ActionResult{},
			Failures: []models.ActionFailure{},
		},
	}
	if out.TurnID == "" && req.Prepared != nil {
		out.TurnID = req.Prepared.TurnID
	}
	if out.TurnID == "" {
		out.TurnID = uuid.NewString()
	}
	if out.Commands == nil {
		out.Commands = []models.ActionCommand{}
	}
	if out.Skipped == nil {
		out.Skipped = []models.SkippedDirective{}
	}
	if mode.AllowActions && len(parsed.Commands) > 0 {
		out.Report = p.dispatcher.Execute(ctx, h, parsed.Commands)
		out.Dispatched = true
	} else if len(parsed.Commands) > 0 {
		p.logger.Info("directives ignored in read-only mode",
			zap.String("mode", mode.Name), zap.Int("commands", len(parsed.Commands)))
	}
	out.Summary = actions.Summarize(out.Report)
	turnsTotal.WithLabelValues(string(modeName(req.Mode)), "apply").Inc()

	if p.journal != nil {
		if err := p.journal.RecordTurn(ctx, p.journalTurn(out, req)); err != nil {
			p.logger.Error("failed to record turn", zap.String("turn_id", out.TurnID), zap.Error(err))
		}
	}
	return out, nil
}

func (p *Processor) journalTurn(out *Outcome, req ApplyRequest) *journal.Turn {
	turn := &journal.Turn{
		ID:        out.TurnID,
		Document:  req.Document,
		Mode:      modeName(req.Mode),
		Query:     req.Query,
		Selection: req.Selection,
		CreatedAt: time.Now().UTC(),
		Actions:   journal.Records(out.Report, out.Skipped),
	}
	if req.Prepared != nil && req.Prepared.Scan != nil {
		turn.Expanded = req.Prepared.Scan.Expanded
		turn.Reason = req.Prepared.Scan.Reason
		turn.ContextTokens = req.Prepared.ContextTokens
	}
	return turn
}

func modeName(m models.ChatMode) models.ChatMode {
	if m == "" {
		return models.ModeAgent
	}
	return m
}
