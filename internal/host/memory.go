package host

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/hyperjump/quill/internal/models"
)

// TextMark is character formatting applied to a run of text inside a paragraph.
type TextMark struct {
	Text       string                `json:"text"`
	Formatting models.TextFormatting `json:"formatting"`
}

// ParagraphFormat is the formatting state a host keeps for one paragraph.
type ParagraphFormat struct {
	Indentation models.Indentation `json:"indentation"`
	Spacing     models.Spacing     `json:"spacing"`
	Alignment   string             `json:"alignment,omitempty"`
	Font        models.Font        `json:"font"`
	Marks       []TextMark         `json:"marks,omitempty"`
}

type paragraph struct {
	text   string
	style  models.Style
	table  bool
	format ParagraphFormat
}

// CommitFunc is called after every successful mutation with the new paragraphs. A
// failing commit rolls the mutation back.
type CommitFunc func(ctx context.Context, paragraphs []models.Paragraph) error

// MemoryHost is an in-memory document. All operations are serialised.
type MemoryHost struct {
	mu     sync.Mutex
	paras  []paragraph
	cursor int
	commit CommitFunc
}

// MemoryOption configures a MemoryHost.
type MemoryOption func(*MemoryHost)

// WithCommit registers fn to run after each mutation.
func WithCommit(fn CommitFunc) MemoryOption {
	return func(h *MemoryHost) { h.commit = fn }
}

// NewMemoryHost creates a host holding paragraphs. Paragraph indexes are reassigned by
// position.
func NewMemoryHost(paragraphs []models.Paragraph, opts ...MemoryOption) *MemoryHost {
	h := &MemoryHost{cursor: -1}
	h.paras = fromModels(paragraphs)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func fromModels(in []models.Paragraph) []paragraph {
	out := make([]paragraph, len(in))
	for i, p := range in {
		out[i] = paragraph{text: p.Text, style: p.Style, table: p.Table}
		if out[i].style == "" {
			out[i].style = models.StyleNormal
		}
	}
	return out
}

// Replace swaps the document text for paragraphs, dropping formatting state. It does not
// commit.
func (h *MemoryHost) Replace(paragraphs []models.Paragraph) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paras = fromModels(paragraphs)
	h.cursor = -1
}

// SetCursor places the insertion point before paragraph index. A negative index or one
// past the end puts it at the end of the document.
func (h *MemoryHost) SetCursor(index int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = index
}

// Format returns the formatting state of paragraph index.
func (h *MemoryHost) Format(index int) (ParagraphFormat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.paras) {
		return ParagraphFormat{}, fmt.Errorf("%w: %d", ErrParagraphOutOfRange, index)
	}
	f := h.paras[index].format
	f.Marks = append([]TextMark(nil), f.Marks...)
	return f, nil
}

func (h *MemoryHost) ReadParagraphs(ctx context.Context) ([]models.Paragraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot(), nil
}

func (h *MemoryHost) snapshot() []models.Paragraph {
	out := make([]models.Paragraph, len(h.paras))
	for i, p := range h.paras {
		out[i] = models.Paragraph{Index: i, Text: p.text, Style: p.style, Table: p.table}
	}
	return out
}

// mutate runs fn under the lock and commits the result. The previous state is restored
// when fn or the commit fails.
func (h *MemoryHost) mutate(ctx context.Context, fn func() (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	saved := make([]paragraph, len(h.paras))
	copy(saved, h.paras)
	changed, err := fn()
	if err == nil && changed && h.commit != nil {
		err = h.commit(ctx, h.snapshot())
	}
	if err != nil {
		h.paras = saved
		return err
	}
	return nil
}

func (h *MemoryHost) FindAndReplace(ctx context.Context, search, replace string, opts models.FindReplaceOptions) (int, error) {
	if search == "" {
		return 0, ErrEmptySearch
	}
	re := searchPattern(search, opts.MatchCase, opts.MatchWholeWord)
	all := opts.ReplaceAllOrDefault()
	count := 0
	err := h.mutate(ctx, func() (bool, error) {
		for i := range h.paras {
			p := &h.paras[i]
			if all {
				n := len(re.FindAllStringIndex(p.text, -1))
				if n > 0 {
					p.text = re.ReplaceAllLiteralString(p.text, replace)
					count += n
				}
				continue
			}
			if loc := re.FindStringIndex(p.text); loc != nil {
				p.text = p.text[:loc[0]] + replace + p.text[loc[1]:]
				count = 1
				break
			}
		}
		return count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func searchPattern(search string, matchCase, wholeWord bool) *regexp.Regexp {
	expr := regexp.QuoteMeta(search)
	if wholeWord {
		expr = `\b` + expr + `\b`
	}
	if !matchCase {
		expr = `(?i)` + expr
	}
	return regexp.MustCompile(expr)
}

// newParagraphs splits text on newlines into Normal paragraphs.
func newParagraphs(text string) []paragraph {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]paragraph, len(lines))
	for i, l := range lines {
		out[i] = paragraph{text: l, style: models.StyleNormal}
	}
	return out
}

func (h *MemoryHost) insertAt(at int, ps []paragraph) {
	h.paras = append(h.paras[:at], append(ps, h.paras[at:]...)...)
}

func (h *MemoryHost) InsertAtStart(ctx context.Context, text string) error {
	return h.mutate(ctx, func() (bool, error) {
		h.insertAt(0, newParagraphs(text))
		return true, nil
	})
}

func (h *MemoryHost) InsertAtEnd(ctx context.Context, text string) error {
	return h.mutate(ctx, func() (bool, error) {
		h.insertAt(len(h.paras), newParagraphs(text))
		return true, nil
	})
}

// InsertAfterHeading inserts text after the first heading containing heading
// (case-insensitive), or failing that the first paragraph containing it. It reports
// whether an anchor was found; nothing is inserted otherwise.
func (h *MemoryHost) InsertAfterHeading(ctx context.Context, heading, text string) (bool, error) {
	needle := strings.ToLower(strings.TrimSpace(heading))
	if needle == "" {
		return false, ErrEmptySearch
	}
	found := false
	err := h.mutate(ctx, func() (bool, error) {
		at := -1
		for i, p := range h.paras {
			if p.style.IsHeading() && strings.Contains(strings.ToLower(p.text), needle) {
				at = i
				break
			}
		}
		if at < 0 {
			for i, p := range h.paras {
				if strings.Contains(strings.ToLower(p.text), needle) {
					at = i
					break
				}
			}
		}
		if at < 0 {
			return false, nil
		}
		h.insertAt(at+1, newParagraphs(text))
		found = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (h *MemoryHost) InsertAtParagraph(ctx context.Context, index int, text string, pos models.InsertPosition) error {
	return h.mutate(ctx, func() (bool, error) {
		if index < 0 || index >= len(h.paras) {
			return false, fmt.Errorf("%w: %d of %d", ErrParagraphOutOfRange, index, len(h.paras))
		}
		ps := newParagraphs(text)
		switch pos {
		case models.PositionBefore:
			h.insertAt(index, ps)
		case models.PositionAfter:
			h.insertAt(index+1, ps)
		case models.PositionReplace:
			h.paras[index].text = ps[0].text
			h.paras[index].format.Marks = nil
			h.insertAt(index+1, ps[1:])
		default:
			return false, fmt.Errorf("invalid insert position %q", pos)
		}
		return true, nil
	})
}

// FormatTextRange records a mark on every case-insensitive occurrence of search and
// returns the number of occurrences.
func (h *MemoryHost) FormatTextRange(ctx context.Context, search string, f models.TextFormatting) (int, error) {
	if search == "" {
		return 0, ErrEmptySearch
	}
	re := searchPattern(search, false, false)
	count := 0
	err := h.mutate(ctx, func() (bool, error) {
		for i := range h.paras {
			p := &h.paras[i]
			for _, m := range re.FindAllString(p.text, -1) {
				p.format.Marks = append(p.format.Marks, TextMark{Text: m, Formatting: f})
				count++
			}
		}
		return count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// InsertTable inserts an empty rows x cols grid as a single table paragraph.
func (h *MemoryHost) InsertTable(ctx context.Context, rows, cols int, loc models.TableLocation) error {
	if rows < 1 || cols < 1 || rows > models.MaxTableRows || cols > models.MaxTableColumns {
		return fmt.Errorf("invalid table size %dx%d", rows, cols)
	}
	return h.mutate(ctx, func() (bool, error) {
		t := paragraph{text: tableGrid(rows, cols), style: models.StyleTable, table: true}
		switch loc {
		case models.LocationStart:
			h.insertAt(0, []paragraph{t})
		case models.LocationEnd:
			h.insertAt(len(h.paras), []paragraph{t})
		case models.LocationCursor:
			at := h.cursor
			if at < 0 || at > len(h.paras) {
				at = len(h.paras)
			}
			h.insertAt(at, []paragraph{t})
		default:
			return false, fmt.Errorf("invalid table location %q", loc)
		}
		return true, nil
	})
}

// tableGrid renders an empty Markdown table with a header separator after the first row.
func tableGrid(rows, cols int) string {
	row := "|" + strings.Repeat("   |", cols)
	sep := "|" + strings.Repeat(" --- |", cols)
	lines := []string{row, sep}
	for i := 1; i < rows; i++ {
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (h *MemoryHost) FormatParagraphs(ctx context.Context, c models.ParagraphCriteria, f models.ParagraphFormatting) (int, error) {
	count := 0
	err := h.mutate(ctx, func() (bool, error) {
		for i := range h.paras {
			p := &h.paras[i]
			if !c.Matches(i, p.style) {
				continue
			}
			applyFormatting(p, f)
			count++
		}
		return count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func applyFormatting(p *paragraph, f models.ParagraphFormatting) {
	if in := f.Indentation; in != nil {
		setFloat(&p.format.Indentation.FirstLine, in.FirstLine)
		setFloat(&p.format.Indentation.Hanging, in.Hanging)
		setFloat(&p.format.Indentation.Left, in.Left)
		setFloat(&p.format.Indentation.Right, in.Right)
	}
	if sp := f.Spacing; sp != nil {
		setFloat(&p.format.Spacing.Before, sp.Before)
		setFloat(&p.format.Spacing.After, sp.After)
		setFloat(&p.format.Spacing.LineSpacing, sp.LineSpacing)
	}
	if f.Alignment != "" {
		p.format.Alignment = f.Alignment
	}
	if f.Style != "" {
		p.style = f.Style
	}
	if fo := f.Font; fo != nil {
		if fo.Name != "" {
			p.format.Font.Name = fo.Name
		}
		if fo.Color != "" {
			p.format.Font.Color = fo.Color
		}
		setFloat(&p.format.Font.Size, fo.Size)
		if fo.Bold != nil {
			b := *fo.Bold
			p.format.Font.Bold = &b
		}
		if fo.Italic != nil {
			it := *fo.Italic
			p.format.Font.Italic = &it
		}
	}
}

func setFloat(dst **float64, v *float64) {
	if v != nil {
		x := *v
		*dst = &x
	}
}

func (h *MemoryHost) FormattingAnalysis(ctx context.Context) (*models.FormattingAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return analyze(h.paras), nil
}

func analyze(paras []paragraph) *models.FormattingAnalysis {
	a := &models.FormattingAnalysis{
		StylesUsed:        []string{},
		FontAnalysis:      map[string]int{},
		AlignmentAnalysis: map[string]int{},
	}
	seen := map[string]bool{}
	for _, p := range paras {
		a.TotalParagraphs++
		if p.style.IsHeading() {
			a.HeadingCount++
		}
		if fl := p.format.Indentation.FirstLine; fl != nil && *fl > 0 {
			a.IndentedParagraphs++
		}
		if s := string(p.style); !seen[s] {
			seen[s] = true
			a.StylesUsed = append(a.StylesUsed, s)
		}
		font := p.format.Font.Name
		if font == "" {
			font = "Unknown"
		}
		a.FontAnalysis[font]++
		align := p.format.Alignment
		if align == "" {
			align = "Left"
		}
		a.AlignmentAnalysis[align]++
	}
	a.BodyParagraphs = a.TotalParagraphs - a.HeadingCount
	return a
}
