// Package extract reads documents into paragraphs with their paragraph styles.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/quill/internal/models"
)

// ErrUnsupported is returned for an extension no reader handles.
var ErrUnsupported = errors.New("unsupported document format")

// Format identifies how a document is read and, for text formats, written back.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatDOCX     Format = "docx"
	FormatODT      Format = "odt"
	FormatPDF      Format = "pdf"
)

// Writable reports whether documents of this format can be saved back to disk.
func (f Format) Writable() bool {
	return f == FormatMarkdown || f == FormatText
}

// FormatOf returns the format for a path's extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt", ".text", ".rst", "":
		return FormatText, nil
	case ".docx":
		return FormatDOCX, nil
	case ".odt":
		return FormatODT, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// Extractor reads documents into paragraphs.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its paragraphs, indexed by position.
func (e *Extractor) Extract(path string) ([]models.Paragraph, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, format)
}

// ExtractBytes decodes content in the given format.
func (e *Extractor) ExtractBytes(content []byte, format Format) ([]models.Paragraph, error) {
	var (
		paras []models.Paragraph
		err   error
	)
	switch format {
	case FormatMarkdown:
		paras = ParseMarkdown(validUTF8(content))
	case FormatText:
		paras = ParseText(validUTF8(content))
	case FormatDOCX:
		paras, err = extractDOCX(content)
	case FormatODT:
		paras, err = extractODT(content)
	case FormatPDF:
		paras, err = extractPDF(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, format)
	}
	if err != nil {
		return nil, err
	}
	for i := range paras {
		paras[i].Index = i
		if paras[i].Style == "" {
			paras[i].Style = models.StyleNormal
		}
	}
	return paras, nil
}
