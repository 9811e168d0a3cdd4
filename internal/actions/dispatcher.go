package actions

import (
	"context"
	"fmt"

	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/pkg/utils"
	"go.uber.org/zap"
)

// Dispatcher applies parsed commands to a document host one at a time, in order.
type Dispatcher struct {
	logger *zap.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = utils.OrNop(d.logger)
	return d
}

// Execute dispatches cmds sequentially. A command the host rejects is logged and recorded
// as a failure, and the remaining commands still run. Once ctx is done every remaining
// command is recorded as failed without touching the host.
func (d *Dispatcher) Execute(ctx context.Context, h host.DocumentHost, cmds []models.ActionCommand) models.ExecutionReport {
	report := models.ExecutionReport{
		Results:  []models.ActionResult{},
		Failures: []models.ActionFailure{},
	}
	for seq, cmd := range cmds {
		res, err := d.dispatch(ctx, h, cmd)
		if err != nil {
			actionsDispatchedTotal.WithLabelValues(string(cmd.Type()), "failed").Inc()
			d.logger.Warn("action failed",
				zap.Int("seq", seq),
				zap.String("type", string(cmd.Type())),
				zap.Error(err))
			report.Failures = append(report.Failures, models.ActionFailure{
				Seq:     seq,
				Type:    cmd.Type(),
				Command: cmd,
				Err:     err.Error(),
			})
			continue
		}
		res.Seq = seq
		res.Type = cmd.Type()
		res.Command = cmd
		actionsDispatchedTotal.WithLabelValues(string(cmd.Type()), "applied").Inc()
		d.logger.Debug("action applied",
			zap.Int("seq", seq),
			zap.String("type", string(cmd.Type())),
			zap.Int("count", res.Count))
		report.Results = append(report.Results, res)
	}
	return report
}

func (d *Dispatcher) dispatch(ctx context.Context, h host.DocumentHost, cmd models.ActionCommand) (models.ActionResult, error) {
	var res models.ActionResult
	if err := ctx.Err(); err != nil {
		return res, err
	}
	var err error
	switch c := cmd.(type) {
	case models.FindReplace:
		res.Count, err = h.FindAndReplace(ctx, c.Search, c.Replace, c.Options)
	case models.InsertAtStart:
		err = h.InsertAtStart(ctx, c.Content)
	case models.InsertAtEnd:
		err = h.InsertAtEnd(ctx, c.Content)
	case models.InsertAfterHeading:
		var found bool
		found, err = h.InsertAfterHeading(ctx, c.Heading, c.Content)
		res.Found = &found
	case models.InsertAtParagraph:
		err = h.InsertAtParagraph(ctx, c.Index, c.Content, c.Position)
	case models.FormatText:
		res.Count, err = h.FormatTextRange(ctx, c.Text, c.Formatting)
	case models.CreateTable:
		err = h.InsertTable(ctx, c.Rows, c.Columns, c.Location)
	case models.FormatParagraphs:
		res.Count, err = h.FormatParagraphs(ctx, c.Criteria, c.Formatting)
	case models.IndentParagraphs:
		res.Count, err = h.FormatParagraphs(ctx, IndentCriteria(), IndentFormatting(c.Amount))
	case models.AnalyzeFormatting:
		res.Analysis, err = h.FormattingAnalysis(ctx)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Type())
	}
	return res, err
}

// IndentCriteria selects every paragraph that is not a heading.
func IndentCriteria() models.ParagraphCriteria {
	return models.ParagraphCriteria{ExcludeHeadings: true}
}

// IndentFormatting sets a first-line indent of amount points.
func IndentFormatting(amount float64) models.ParagraphFormatting {
	return models.ParagraphFormatting{Indentation: &models.Indentation{FirstLine: &amount}}
}
