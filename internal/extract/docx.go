package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/hyperjump/quill/internal/models"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

var (
	// wpBlock matches one <w:p> paragraph with any attributes.
	wpBlock = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	// wpEmpty matches self-closing empty paragraphs, which are dropped before matching.
	wpEmpty = regexp.MustCompile(`<w:p(?:\s[^>]*)?/>`)
	// wtTag matches <w:t>text</w:t> or <w:t xml:space="preserve">text</w:t>.
	wtTag = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	// pStyle captures the paragraph style id.
	pStyle = regexp.MustCompile(`<w:pStyle\s+w:val="([^"]+)"`)
	// tblBlock matches a whole table so its paragraphs can be flagged.
	tblBlock = regexp.MustCompile(`(?s)<w:tbl>.*?</w:tbl>`)
)

// partNameRe extracts PartName from Override elements in [Content_Types].xml.
var partNameRe = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)

// partNameRe2 handles the case where ContentType appears before PartName.
var partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

// findDocxMainDocumentPath finds the main document path from [Content_Types].xml.
// Returns the path without leading slash, or empty string if not found.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	raw, err := readZipEntry(zr, contentTypesPath)
	if err != nil || raw == nil {
		return ""
	}
	content := string(raw)
	if matches := partNameRe.FindStringSubmatch(content); len(matches) > 1 {
		return strings.TrimPrefix(matches[1], "/")
	}
	if matches := partNameRe2.FindStringSubmatch(content); len(matches) > 1 {
		return strings.TrimPrefix(matches[1], "/")
	}
	return ""
}

// extractDOCX reads the paragraphs of a .docx. Each <w:p> becomes one paragraph whose
// text is its runs concatenated and whose style is its pStyle (Heading1, Title, ...).
// Paragraphs inside tables are marked as table paragraphs.
func extractDOCX(content []byte) ([]models.Paragraph, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	docXML, err := readZipEntry(zr, docPath)
	if err != nil {
		return nil, fmt.Errorf("extract DOCX: %w", err)
	}
	if docXML == nil {
		return nil, fmt.Errorf("extract DOCX: %s not found", docPath)
	}

	body := wpEmpty.ReplaceAllString(string(docXML), "")
	tables := tblBlock.FindAllStringIndex(body, -1)
	inTable := func(pos int) bool {
		for _, t := range tables {
			if pos >= t[0] && pos < t[1] {
				return true
			}
		}
		return false
	}

	var out []models.Paragraph
	for _, loc := range wpBlock.FindAllStringIndex(body, -1) {
		block := body[loc[0]:loc[1]]
		var b strings.Builder
		for _, run := range wtTag.FindAllStringSubmatch(block, -1) {
			b.WriteString(html.UnescapeString(run[1]))
		}
		p := models.Paragraph{Text: strings.TrimSpace(b.String()), Style: models.StyleNormal}
		if m := pStyle.FindStringSubmatch(block); m != nil {
			p.Style = docxStyle(m[1])
		}
		if inTable(loc[0]) {
			p.Table = true
		}
		out = append(out, p)
	}
	return out, nil
}

// docxStyle normalises a Word style id. Localised or spaced heading ids such as
// "heading 2" map to Heading2.
func docxStyle(id string) models.Style {
	compact := strings.ReplaceAll(id, " ", "")
	lower := strings.ToLower(compact)
	switch {
	case strings.HasPrefix(lower, "heading") && len(lower) == len("heading")+1:
		if d := lower[len(lower)-1]; d >= '1' && d <= '6' {
			return models.Style("Heading" + string(d))
		}
	case lower == "title":
		return models.StyleTitle
	case lower == "subtitle":
		return models.StyleSubtitle
	}
	return models.Style(compact)
}
