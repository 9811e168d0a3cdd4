package extract

import (
	"bytes"
	"fmt"

	"github.com/hyperjump/quill/internal/models"
	"github.com/ledongthuc/pdf"
)

// extractPDF reads each page's plain text and splits it into blank-line separated
// paragraphs. PDF carries no paragraph styles, so every paragraph is Normal.
func extractPDF(content []byte) ([]models.Paragraph, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	var out []models.Paragraph
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		for _, b := range blocks(text) {
			out = append(out, models.Paragraph{Text: b, Style: models.StyleNormal})
		}
	}
	return out, nil
}
