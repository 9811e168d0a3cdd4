package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyperjump/quill/internal/extract"
	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/pkg/utils"
	"go.uber.org/zap"
)

// FileHost is a Markdown or plain-text file opened for editing. Edits go through the
// embedded MemoryHost and are written back after every successful mutation. Formatting
// that the file format cannot represent is kept in memory only.
type FileHost struct {
	*MemoryHost
	path   string
	format extract.Format
	logger *zap.Logger

	mu        sync.Mutex
	lastSaved string
}

// FileOption configures a FileHost.
type FileOption func(*FileHost)

// WithFileLogger sets the logger for saves and reloads.
func WithFileLogger(l *zap.Logger) FileOption {
	return func(f *FileHost) { f.logger = l }
}

// OpenFile opens a writable text document.
func OpenFile(path string, opts ...FileOption) (*FileHost, error) {
	format, err := extract.FormatOf(path)
	if err != nil {
		return nil, err
	}
	if !format.Writable() {
		return nil, fmt.Errorf("open %s: %w", path, ErrReadOnly)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	paras, err := extract.NewExtractor().ExtractBytes(raw, format)
	if err != nil {
		return nil, err
	}
	f := &FileHost{path: path, format: format, lastSaved: string(raw)}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = utils.OrNop(f.logger)
	f.MemoryHost = NewMemoryHost(paras, WithCommit(f.save))
	return f, nil
}

// Path returns the file path.
func (f *FileHost) Path() string { return f.path }

// FileFormat returns the file format.
func (f *FileHost) FileFormat() extract.Format { return f.format }

func (f *FileHost) render(paragraphs []models.Paragraph) string {
	if f.format == extract.FormatMarkdown {
		return extract.RenderMarkdown(paragraphs)
	}
	return extract.RenderText(paragraphs)
}

// save writes the document atomically through a temp file in the same directory.
func (f *FileHost) save(_ context.Context, paragraphs []models.Paragraph) error {
	content := f.render(paragraphs)

	f.mu.Lock()
	defer f.mu.Unlock()
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".quill-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	f.lastSaved = content
	f.logger.Debug("document saved", zap.String("path", f.path), zap.Int("paragraphs", len(paragraphs)))
	return nil
}

// Reload re-reads the file after an external change. It reports false when the file
// still holds what this host last wrote, in which case in-memory formatting is kept.
func (f *FileHost) Reload(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.MemoryHost.mu.Lock()
	defer f.MemoryHost.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return false, fmt.Errorf("read file: %w", err)
	}
	f.mu.Lock()
	unchanged := string(raw) == f.lastSaved
	if !unchanged {
		f.lastSaved = string(raw)
	}
	f.mu.Unlock()
	if unchanged {
		return false, nil
	}

	paras, err := extract.NewExtractor().ExtractBytes(raw, f.format)
	if err != nil {
		return false, err
	}
	f.MemoryHost.paras = fromModels(paras)
	f.MemoryHost.cursor = -1
	f.logger.Debug("document reloaded", zap.String("path", f.path), zap.Int("paragraphs", len(paras)))
	return true, nil
}
