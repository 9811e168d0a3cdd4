// Package host defines the document host capability interface and its implementations:
// an in-memory host, file-backed Markdown and text hosts, and read-only DOCX and PDF hosts.
package host

import (
	"context"
	"errors"

	"github.com/hyperjump/quill/internal/models"
)

var (
	// ErrReadOnly is returned by every mutator of a read-only host.
	ErrReadOnly = errors.New("document is read-only")
	// ErrParagraphOutOfRange is returned when a paragraph index does not exist.
	ErrParagraphOutOfRange = errors.New("paragraph index out of range")
	// ErrOutsideRoot is returned when a document path escapes the configured root.
	ErrOutsideRoot = errors.New("path is outside the document root")
	// ErrEmptySearch is returned when a search string is empty.
	ErrEmptySearch = errors.New("search text is empty")
	// ErrUnsupportedFormat is returned for files no host can open.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// DocumentHost is the set of operations the assistant performs against an open document.
// Every call may fail independently.
type DocumentHost interface {
	ReadParagraphs(ctx context.Context) ([]models.Paragraph, error)
	FindAndReplace(ctx context.Context, search, replace string, opts models.FindReplaceOptions) (int, error)
	InsertAtStart(ctx context.Context, text string) error
	InsertAtEnd(ctx context.Context, text string) error
	InsertAfterHeading(ctx context.Context, heading, text string) (bool, error)
	InsertAtParagraph(ctx context.Context, index int, text string, pos models.InsertPosition) error
	FormatTextRange(ctx context.Context, search string, f models.TextFormatting) (int, error)
	InsertTable(ctx context.Context, rows, cols int, loc models.TableLocation) error
	FormatParagraphs(ctx context.Context, c models.ParagraphCriteria, f models.ParagraphFormatting) (int, error)
	FormattingAnalysis(ctx context.Context) (*models.FormattingAnalysis, error)
}
