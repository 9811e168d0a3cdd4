package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/quill/internal/models"
)

// odtContentPath is the path to the main content inside an OpenDocument zip.
const odtContentPath = "content.xml"

var (
	// odtBlock matches a text:h heading or a text:p paragraph with its attributes.
	odtBlock = regexp.MustCompile(`(?s)<text:(h|p)(\s[^>]*)?>(.*?)</text:(?:h|p)>`)
	// odtLevel captures a heading's outline level.
	odtLevel = regexp.MustCompile(`text:outline-level="(\d)"`)
	// odtEmpty matches self-closing empty paragraphs and headings.
	odtEmpty = regexp.MustCompile(`<text:(?:h|p)(?:\s[^>]*)?/>`)
	// odtTag strips nested span and other inline markup.
	odtTag = regexp.MustCompile(`<[^>]+>`)
)

// extractODT reads the paragraphs of an OpenDocument text file. text:h elements become
// Heading paragraphs at their outline level.
func extractODT(content []byte) ([]models.Paragraph, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract ODT: not a zip: %w", err)
	}
	contentXML, err := readZipEntry(zr, odtContentPath)
	if err != nil {
		return nil, fmt.Errorf("extract ODT: %w", err)
	}
	if contentXML == nil {
		return nil, fmt.Errorf("extract ODT: %s not found", odtContentPath)
	}

	var out []models.Paragraph
	for _, m := range odtBlock.FindAllStringSubmatch(odtEmpty.ReplaceAllString(string(contentXML), ""), -1) {
		text := strings.TrimSpace(html.UnescapeString(odtTag.ReplaceAllString(m[3], "")))
		p := models.Paragraph{Text: text, Style: models.StyleNormal}
		if m[1] == "h" {
			level := 1
			if lm := odtLevel.FindStringSubmatch(m[2]); lm != nil {
				level, _ = strconv.Atoi(lm[1])
			}
			if level < 1 || level > 6 {
				level = 1
			}
			p.Style = models.Style(fmt.Sprintf("Heading%d", level))
		}
		out = append(out, p)
	}
	return out, nil
}
