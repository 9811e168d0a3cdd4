package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/quill/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteJournal{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		mode TEXT NOT NULL,
		query TEXT NOT NULL,
		selection TEXT,
		expanded INTEGER NOT NULL DEFAULT 0,
		reason TEXT,
		context_tokens INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_turns_document ON turns(document, created_at);

	CREATE TABLE IF NOT EXISTS turn_actions (
		turn_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		type TEXT,
		status TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		detail TEXT,
		payload TEXT,
		PRIMARY KEY (turn_id, seq),
		FOREIGN KEY (turn_id) REFERENCES turns(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordTurn inserts a turn and its actions in one transaction. A missing ID is
// generated and a zero CreatedAt is set to now.
func (s *SQLiteJournal) RecordTurn(ctx context.Context, turn *Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (id, document, mode, query, selection, expanded, reason, context_tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.Document, string(turn.Mode), turn.Query, turn.Selection, turn.Expanded, turn.Reason, turn.ContextTokens, turn.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO turn_actions (turn_id, seq, type, status, count, detail, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range turn.Actions {
		if _, err := stmt.ExecContext(ctx, turn.ID, a.Seq, string(a.Type), a.Status, a.Count, a.Detail, string(a.Payload)); err != nil {
			return fmt.Errorf("insert action %d: %w", a.Seq, err)
		}
	}
	return tx.Commit()
}

// GetTurn returns a turn with its actions.
func (s *SQLiteJournal) GetTurn(ctx context.Context, id string) (*Turn, error) {
	var turn Turn
	var selection, reason sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, document, mode, query, selection, expanded, reason, context_tokens, created_at
		 FROM turns WHERE id = ?`, id,
	).Scan(&turn.ID, &turn.Document, &turn.Mode, &turn.Query, &selection, &turn.Expanded, &reason, &turn.ContextTokens, &turn.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTurnNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	turn.Selection = selection.String
	turn.Reason = reason.String

	turn.Actions, err = s.actions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

func (s *SQLiteJournal) actions(ctx context.Context, turnID string) ([]ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, type, status, count, detail, payload
		 FROM turn_actions WHERE turn_id = ? ORDER BY seq`, turnID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActionRecord{}
	for rows.Next() {
		var a ActionRecord
		var typ, detail, payload sql.NullString
		if err := rows.Scan(&a.Seq, &typ, &a.Status, &a.Count, &detail, &payload); err != nil {
			return nil, err
		}
		a.Type = models.ActionType(typ.String)
		a.Detail = detail.String
		if payload.String != "" {
			a.Payload = []byte(payload.String)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListTurns returns turns newest first, optionally only those for document, with their
// actions.
func (s *SQLiteJournal) ListTurns(ctx context.Context, document string, offset, limit int) ([]*Turn, error) {
	query := `SELECT id FROM turns`
	args := []any{}
	if document != "" {
		query += ` WHERE document = ?`
		args = append(args, document)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	turns := make([]*Turn, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTurn(ctx, id)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// CountTurns returns the total number of turns.
func (s *SQLiteJournal) CountTurns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns`).Scan(&count)
	return count, err
}

// SizeBytes returns the on-disk size of the database including its WAL files.
func (s *SQLiteJournal) SizeBytes() (int64, error) {
	return DiskUsageBytes(s.path, s.path+"-wal", s.path+"-shm")
}

// Close closes the database connection.
func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}
