// Package journal records assistant turns and the edits they applied.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/hyperjump/quill/internal/models"
)

// ErrTurnNotFound is returned when a turn id is unknown.
var ErrTurnNotFound = errors.New("turn not found")

// Action statuses.
const (
	StatusApplied = "applied"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Turn is one processed assistant reply against a document.
type Turn struct {
	ID            string          `json:"id"`
	Document      string          `json:"document"`
	Mode          models.ChatMode `json:"mode"`
	Query         string          `json:"query"`
	Selection     string          `json:"selection,omitempty"`
	Expanded      bool            `json:"expanded"`
	Reason        string          `json:"reason"`
	ContextTokens int             `json:"context_tokens"`
	CreatedAt     time.Time       `json:"created_at"`
	Actions       []ActionRecord  `json:"actions"`
}

// Counts returns the number of applied, failed and skipped actions.
func (t *Turn) Counts() (applied, failed, skipped int) {
	for _, a := range t.Actions {
		switch a.Status {
		case StatusApplied:
			applied++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return applied, failed, skipped
}

// ActionRecord is one directive of a turn and what became of it. Payload is the command
// as JSON, or the raw directive text for skipped ones.
type ActionRecord struct {
	Seq     int               `json:"seq"`
	Type    models.ActionType `json:"type,omitempty"`
	Status  string            `json:"status"`
	Count   int               `json:"count,omitempty"`
	Detail  string            `json:"detail,omitempty"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// Records flattens an execution report and the parser's skipped directives into action
// records. Applied and failed commands keep their dispatch sequence; skipped directives
// follow them.
func Records(report models.ExecutionReport, skipped []models.SkippedDirective) []ActionRecord {
	var out []ActionRecord
	for _, r := range report.Results {
		rec := ActionRecord{Seq: r.Seq, Type: r.Type, Status: StatusApplied, Count: r.Count, Payload: marshal(r.Command)}
		if r.Found != nil && !*r.Found {
			rec.Detail = "anchor not found"
		}
		out = append(out, rec)
	}
	for _, f := range report.Failures {
		out = append(out, ActionRecord{Seq: f.Seq, Type: f.Type, Status: StatusFailed, Detail: f.Err, Payload: marshal(f.Command)})
	}
	sortBySeq(out)
	next := len(report.Results) + len(report.Failures)
	for i, s := range skipped {
		raw, _ := json.Marshal(s.Raw)
		out = append(out, ActionRecord{Seq: next + i, Status: StatusSkipped, Detail: s.Reason, Payload: raw})
	}
	return out
}

func marshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func sortBySeq(recs []ActionRecord) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })
}

// Journal persists turns.
type Journal interface {
	RecordTurn(ctx context.Context, turn *Turn) error
	GetTurn(ctx context.Context, id string) (*Turn, error)
	ListTurns(ctx context.Context, document string, offset, limit int) ([]*Turn, error)
	CountTurns(ctx context.Context) (int64, error)
	Close() error
}
