package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/quill/internal/models"
)

// validUTF8 returns content as string. Invalid UTF-8 sequences are replaced with the
// replacement character.
func validUTF8(content []byte) string {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "\uFFFD")
	}
	return string(content)
}

// blocks splits text into blank-line separated blocks, trimming each.
func blocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, strings.TrimRight(line, " \t"))
	}
	flush()
	return out
}

// ParseText reads plain text. Each blank-line separated block is one Normal paragraph.
func ParseText(text string) []models.Paragraph {
	var out []models.Paragraph
	for _, b := range blocks(text) {
		out = append(out, models.Paragraph{Index: len(out), Text: b, Style: models.StyleNormal})
	}
	return out
}

// RenderText writes paragraphs as blank-line separated blocks.
func RenderText(paragraphs []models.Paragraph) string {
	parts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p.IsBlank() {
			continue
		}
		parts = append(parts, p.Text)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

var atxHeading = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)

// ParseMarkdown reads Markdown. ATX headings become Heading1..Heading6 paragraphs,
// blocks whose lines all start with '|' become table paragraphs, and every other block
// is one Normal paragraph.
func ParseMarkdown(text string) []models.Paragraph {
	var out []models.Paragraph
	add := func(p models.Paragraph) {
		p.Index = len(out)
		out = append(out, p)
	}
	for _, b := range blocks(text) {
		lines := strings.Split(b, "\n")
		var body []string
		flush := func() {
			if len(body) > 0 {
				add(blockParagraph(strings.Join(body, "\n")))
				body = nil
			}
		}
		for _, line := range lines {
			if m := atxHeading.FindStringSubmatch(line); m != nil {
				flush()
				add(models.Paragraph{Text: m[2], Style: models.Style(fmt.Sprintf("Heading%d", len(m[1])))})
				continue
			}
			body = append(body, line)
		}
		flush()
	}
	return out
}

func blockParagraph(text string) models.Paragraph {
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "|") {
			return models.Paragraph{Text: text, Style: models.StyleNormal}
		}
	}
	return models.Paragraph{Text: text, Style: models.StyleTable, Table: true}
}

// RenderMarkdown writes paragraphs back as Markdown. Heading styles and Title become ATX
// headings; everything else is written as-is.
func RenderMarkdown(paragraphs []models.Paragraph) string {
	parts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p.IsBlank() {
			continue
		}
		if lvl := p.Style.HeadingLevel(); lvl > 0 && !p.Table {
			parts = append(parts, strings.Repeat("#", lvl)+" "+strings.TrimSpace(p.Text))
			continue
		}
		parts = append(parts, p.Text)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
