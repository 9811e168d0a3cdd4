package host

import (
	"context"
	"fmt"

	"github.com/hyperjump/quill/internal/extract"
	"github.com/hyperjump/quill/internal/models"
)

// ReadOnlyHost serves paragraphs extracted from a DOCX, ODT or PDF file. Every mutator
// fails with ErrReadOnly.
type ReadOnlyHost struct {
	path   string
	format extract.Format
	paras  []paragraph
}

// OpenReadOnly extracts the document at path.
func OpenReadOnly(path string) (*ReadOnlyHost, error) {
	format, err := extract.FormatOf(path)
	if err != nil {
		return nil, err
	}
	paras, err := extract.NewExtractor().Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return &ReadOnlyHost{path: path, format: format, paras: fromModels(paras)}, nil
}

// Path returns the file path.
func (r *ReadOnlyHost) Path() string { return r.path }

func (r *ReadOnlyHost) ReadParagraphs(ctx context.Context) ([]models.Paragraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Paragraph, len(r.paras))
	for i, p := range r.paras {
		out[i] = models.Paragraph{Index: i, Text: p.text, Style: p.style, Table: p.table}
	}
	return out, nil
}

func (r *ReadOnlyHost) FindAndReplace(context.Context, string, string, models.FindReplaceOptions) (int, error) {
	return 0, ErrReadOnly
}

func (r *ReadOnlyHost) InsertAtStart(context.Context, string) error { return ErrReadOnly }

func (r *ReadOnlyHost) InsertAtEnd(context.Context, string) error { return ErrReadOnly }

func (r *ReadOnlyHost) InsertAfterHeading(context.Context, string, string) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnlyHost) InsertAtParagraph(context.Context, int, string, models.InsertPosition) error {
	return ErrReadOnly
}

func (r *ReadOnlyHost) FormatTextRange(context.Context, string, models.TextFormatting) (int, error) {
	return 0, ErrReadOnly
}

func (r *ReadOnlyHost) InsertTable(context.Context, int, int, models.TableLocation) error {
	return ErrReadOnly
}

func (r *ReadOnlyHost) FormatParagraphs(context.Context, models.ParagraphCriteria, models.ParagraphFormatting) (int, error) {
	return 0, ErrReadOnly
}

// FormattingAnalysis reports styles only; extracted documents carry no paragraph formatting.
func (r *ReadOnlyHost) FormattingAnalysis(ctx context.Context) (*models.FormattingAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analyze(r.paras), nil
}
