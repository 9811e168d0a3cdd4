package host

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hyperjump/quill/internal/extract"
	"github.com/hyperjump/quill/pkg/utils"
	"go.uber.org/zap"
)

// DefaultCacheSize is the number of open documents kept by a Registry.
const DefaultCacheSize = 32

// SupportedExtensions lists the file extensions a Registry opens.
var SupportedExtensions = []string{".md", ".markdown", ".txt", ".text", ".rst", ".docx", ".odt", ".pdf"}

// Document is an open document host with a file path.
type Document interface {
	DocumentHost
	Path() string
}

// Registry opens documents beneath a root directory and keeps the most recently used
// ones open, so in-memory formatting state survives between requests.
type Registry struct {
	root    string
	cache   *lru.Cache[string, Document]
	watcher *Watcher
	logger  *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry logger. It is passed on to opened files.
func WithRegistryLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a registry confined to root holding up to size open documents.
func NewRegistry(root string, size int, opts ...RegistryOption) (*Registry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	r := &Registry{root: filepath.Clean(abs)}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = utils.OrNop(r.logger)
	r.cache, err = lru.NewWithEvict[string, Document](size, func(path string, _ Document) {
		r.logger.Debug("document evicted", zap.String("path", path))
	})
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	return r, nil
}

// Root returns the absolute document root.
func (r *Registry) Root() string { return r.root }

// Resolve maps a path relative to the root, or an absolute path, to a clean absolute
// path. Paths outside the root fail with ErrOutsideRoot.
func (r *Registry) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutsideRoot)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	path = filepath.Clean(path)
	if !inDir(r.root, path) || path == r.root {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return path, nil
}

// Open returns the open document for path, opening it on first use. Text formats open
// read-write; DOCX, ODT and PDF open read-only.
func (r *Registry) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}
	if doc, ok := r.cache.Get(abs); ok {
		return doc, nil
	}
	format, err := extract.FormatOf(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	var doc Document
	if format.Writable() {
		doc, err = OpenFile(abs, WithFileLogger(r.logger))
	} else {
		doc, err = OpenReadOnly(abs)
	}
	if err != nil {
		return nil, err
	}
	r.cache.Add(abs, doc)
	r.logger.Debug("document opened", zap.String("path", abs), zap.String("format", string(format)))
	return doc, nil
}

// Forget drops path from the cache.
func (r *Registry) Forget(path string) {
	r.cache.Remove(filepath.Clean(path))
}

// Len returns the number of open documents.
func (r *Registry) Len() int { return r.cache.Len() }

// Watch keeps open documents in step with the file system until ctx is cancelled:
// changed text files are reloaded, and removed or changed read-only files are dropped
// so the next Open re-extracts them.
func (r *Registry) Watch(ctx context.Context, opts ...WatcherOption) error {
	if r.watcher != nil {
		return errors.New("registry is already watching")
	}
	opts = append([]WatcherOption{WithWatcherLogger(r.logger)}, opts...)
	r.watcher = NewWatcher(r.root, SupportedExtensions, func(path string) {
		doc, ok := r.cache.Peek(path)
		if !ok {
			return
		}
		fh, ok := doc.(*FileHost)
		if !ok {
			r.cache.Remove(path)
			return
		}
		if _, err := fh.Reload(ctx); err != nil {
			r.logger.Warn("reload failed", zap.String("path", path), zap.Error(err))
			r.cache.Remove(path)
		}
	}, func(path string) {
		r.cache.Remove(path)
	}, opts...)
	return r.watcher.Start(ctx)
}

// Close stops watching.
func (r *Registry) Close() {
	if r.watcher != nil {
		r.watcher.Stop()
	}
}
