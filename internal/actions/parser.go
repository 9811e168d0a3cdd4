// Package actions extracts [ACTION:TYPE:PAYLOAD] edit directives from assistant replies
// and applies them to a document host.
package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/pkg/utils"
	"go.uber.org/zap"
)

var (
	// ErrMalformedPayload is returned when a directive payload does not fit its type's grammar.
	ErrMalformedPayload = errors.New("malformed action payload")
	// ErrUnknownAction is returned for a directive type the parser does not know.
	ErrUnknownAction = errors.New("unknown action type")
)

// DefaultIndent is the first-line indent in points used when INDENT_PARAGRAPHS carries no
// usable amount.
const DefaultIndent = 36

// envelope matches one directive. TYPE excludes ':' and ']', PAYLOAD excludes ']'.
var envelope = regexp.MustCompile(`\[ACTION:([^:\]]+)(?::([^\]]*))?\]`)

// ParseResult holds the decoded commands in order of appearance and the directives that
// were dropped.
type ParseResult struct {
	Commands []models.ActionCommand   `json:"commands"`
	Skipped  []models.SkippedDirective `json:"skipped"`
}

// Parser decodes edit directives.
type Parser struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithParserLogger sets the logger used for skipped directives.
func WithParserLogger(l *zap.Logger) ParserOption {
	return func(p *Parser) { p.logger = l }
}

// NewParser creates a parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{validate: validator.New(validator.WithRequiredStructEnabled())}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = utils.OrNop(p.logger)
	return p
}

// Parse returns every well-formed command in text, in order of appearance.
func (p *Parser) Parse(text string) []models.ActionCommand {
	return p.ParseReport(text).Commands
}

// ParseReport decodes every directive in text independently. A directive that fails to
// decode is logged and recorded in Skipped, and scanning continues with the next one.
func (p *Parser) ParseReport(text string) ParseResult {
	res := ParseResult{
		Commands: []models.ActionCommand{},
		Skipped:  []models.SkippedDirective{},
	}
	for _, m := range envelope.FindAllStringSubmatch(text, -1) {
		cmd, err := p.decode(models.ActionType(strings.TrimSpace(m[1])), m[2])
		if err != nil {
			reason := "malformed"
			if errors.Is(err, ErrUnknownAction) {
				reason = "unknown"
			}
			actionsSkippedTotal.WithLabelValues(reason).Inc()
			p.logger.Warn("skipping action directive", zap.String("directive", m[0]), zap.Error(err))
			res.Skipped = append(res.Skipped, models.SkippedDirective{Raw: m[0], Reason: err.Error()})
			continue
		}
		res.Commands = append(res.Commands, cmd)
	}
	return res
}

func (p *Parser) decode(typ models.ActionType, payload string) (models.ActionCommand, error) {
	var (
		cmd models.ActionCommand
		err error
	)
	switch typ {
	case models.ActionFindReplace:
		cmd, err = decodeFindReplace(payload)
	case models.ActionInsertAtStart:
		cmd = models.InsertAtStart{Content: unquote(payload)}
	case models.ActionInsertAtEnd:
		cmd = models.InsertAtEnd{Content: unquote(payload)}
	case models.ActionInsertAfterHeading:
		cmd, err = decodeInsertAfterHeading(payload)
	case models.ActionInsertAtParagraph:
		cmd, err = decodeInsertAtParagraph(payload)
	case models.ActionFormatText:
		cmd, err = decodeFormatText(payload)
	case models.ActionCreateTable:
		cmd, err = decodeCreateTable(payload)
	case models.ActionFormatParagraphs:
		cmd, err = decodeFormatParagraphs(payload)
	case models.ActionIndentParagraphs:
		return models.IndentParagraphs{Amount: indentAmount(payload)}, nil
	case models.ActionAnalyzeFormatting:
		return models.AnalyzeFormatting{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, typ)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}
	if err := p.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", typ, ErrMalformedPayload, err)
	}
	return cmd, nil
}

func decodeFindReplace(payload string) (models.ActionCommand, error) {
	fs, err := splitFields(payload)
	if err != nil {
		return nil, err
	}
	if len(fs) < 2 || len(fs) > 3 || !fs[0].quoted || !fs[1].quoted {
		return nil, fmt.Errorf(`%w: want "search":"replace"[:options]`, ErrMalformedPayload)
	}
	cmd := models.FindReplace{Search: fs[0].value, Replace: fs[1].value}
	if len(fs) == 3 {
		if err := decodeObject(fs[2], &cmd.Options); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func decodeInsertAfterHeading(payload string) (models.ActionCommand, error) {
	fs, err := splitFields(payload)
	if err != nil {
		return nil, err
	}
	if len(fs) != 2 || !fs[0].quoted || !fs[1].quoted {
		return nil, fmt.Errorf(`%w: want "heading":"content"`, ErrMalformedPayload)
	}
	return models.InsertAfterHeading{Heading: fs[0].value, Content: fs[1].value}, nil
}

func decodeInsertAtParagraph(payload string) (models.ActionCommand, error) {
	fs, err := splitFields(payload)
	if err != nil {
		return nil, err
	}
	if len(fs) != 3 || !fs[1].quoted {
		return nil, fmt.Errorf(`%w: want index:"content":"position"`, ErrMalformedPayload)
	}
	index, err := strconv.Atoi(strings.TrimSpace(fs[0].value))
	if err != nil {
		return nil, fmt.Errorf("%w: paragraph index %q", ErrMalformedPayload, fs[0].value)
	}
	return models.InsertAtParagraph{
		Index:    index,
		Content:  fs[1].value,
		Position: models.InsertPosition(strings.TrimSpace(fs[2].value)),
	}, nil
}

func decodeFormatText(payload string) (models.ActionCommand, error) {
	fs, err := splitFields(payload)
	if err != nil {
		return nil, err
	}
	if len(fs) != 2 || !fs[0].quoted {
		return nil, fmt.Errorf(`%w: want "text":formatting`, ErrMalformedPayload)
	}
	cmd := models.FormatText{Text: fs[0].value}
	if err := decodeObject(fs[1], &cmd.Formatting); err != nil {
		return nil, err
	}
	return cmd, nil
}

func decodeCreateTable(payload string) (models.ActionCommand, error) {
	fs, err := splitFields(payload)
	if err != nil {
		return nil, err
	}
	if len(fs) != 3 {
		return nil, fmt.Errorf(`%w: want rows:columns:"location"`, ErrMalformedPayload)
	}
	rows, err := strconv.Atoi(strings.TrimSpace(fs[0].value))
	if err != nil {
		return nil, fmt.Errorf("%w: rows %q", ErrMalformedPayload, fs[0].value)
	}
	cols, err := strconv.Atoi(strings.TrimSpace(fs[1].value))
	if err != nil {
		return nil, fmt.Errorf("%w: columns %q", ErrMalformedPayload, fs[1].value)
	}
	return models.CreateTable{
		Rows:     rows,
		Columns:  cols,
		Location: models.TableLocation(strings.TrimSpace(fs[2].value)),
	}, nil
}

func decodeFormatParagraphs(payload string) (models.ActionCommand, error) {
	fs, err := splitFields(payload)
	if err != nil {
		return nil, err
	}
	if len(fs) != 2 {
		return nil, fmt.Errorf("%w: want criteria:formatting", ErrMalformedPayload)
	}
	var cmd models.FormatParagraphs
	if err := decodeObject(fs[0], &cmd.Criteria); err != nil {
		return nil, err
	}
	if err := decodeObject(fs[1], &cmd.Formatting); err != nil {
		return nil, err
	}
	return cmd, nil
}

// indentAmount never fails. Only a leading integer such as "24" or "24pt" is read;
// anything else, or zero, falls back to DefaultIndent.
func indentAmount(payload string) float64 {
	s := strings.TrimSpace(unquote(payload))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if n, err := strconv.Atoi(s[:end]); err == nil && n != 0 {
		return float64(n)
	}
	return DefaultIndent
}

func decodeObject(f field, v any) error {
	if !f.object {
		return fmt.Errorf("%w: expected a JSON object, got %q", ErrMalformedPayload, f.value)
	}
	if err := json.Unmarshal([]byte(f.value), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// unquote trims surrounding space and one pair of surrounding double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
