package actions

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/quill/internal/models"
)

func TestParse_InsertAtEnd(t *testing.T) {
	got := NewParser().Parse(`Sure. [ACTION:INSERT_AT_END:"Hello"] Done.`)
	want := []models.ActionCommand{models.InsertAtEnd{Content: "Hello"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %#v, want %#v", got, want)
	}
}

func TestParse_MalformedDoesNotBlockLater(t *testing.T) {
	res := NewParser().ParseReport(`[ACTION:FIND_REPLACE:"onlyone"] then [ACTION:INSERT_AT_START:"X"]`)
	want := []models.ActionCommand{models.InsertAtStart{Content: "X"}}
	if !reflect.DeepEqual(res.Commands, want) {
		t.Errorf("Commands = %#v, want %#v", res.Commands, want)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Raw != `[ACTION:FIND_REPLACE:"onlyone"]` {
		t.Errorf("Skipped = %+v", res.Skipped)
	}
}

func TestParse_AllTypes(t *testing.T) {
	reply := strings.Join([]string{
		`[ACTION:FIND_REPLACE:"color":"colour":{"replaceAll":false,"matchCase":true}]`,
		`[ACTION:INSERT_AT_START:"Note: draft"]`,
		`[ACTION:INSERT_AFTER_HEADING:"Methods":"We used: a, b."]`,
		`[ACTION:INSERT_AT_PARAGRAPH:3:"New text":"after"]`,
		`[ACTION:FORMAT_TEXT:"important":{"bold":true,"fontSize":14}]`,
		`[ACTION:CREATE_TABLE:3:4:"end"]`,
		`[ACTION:FORMAT_PARAGRAPHS:{"excludeHeadings":true}:{"indentation":{"firstLine":36},"alignment":"Left"}]`,
		`[ACTION:INDENT_PARAGRAPHS:24]`,
		`[ACTION:ANALYZE_FORMATTING]`,
	}, "\n")
	got := NewParser().Parse(reply)

	no, yes, size, first := false, true, 14.0, 36.0
	want := []models.ActionCommand{
		models.FindReplace{Search: "color", Replace: "colour", Options: models.FindReplaceOptions{MatchCase: true, ReplaceAll: &no}},
		models.InsertAtStart{Content: "Note: draft"},
		models.InsertAfterHeading{Heading: "Methods", Content: "We used: a, b."},
		models.InsertAtParagraph{Index: 3, Content: "New text", Position: models.PositionAfter},
		models.FormatText{Text: "important", Formatting: models.TextFormatting{Bold: &yes, FontSize: &size}},
		models.CreateTable{Rows: 3, Columns: 4, Location: models.LocationEnd},
		models.FormatParagraphs{
			Criteria:   models.ParagraphCriteria{ExcludeHeadings: true},
			Formatting: models.ParagraphFormatting{Indentation: &models.Indentation{FirstLine: &first}, Alignment: "Left"},
		},
		models.IndentParagraphs{Amount: 24},
		models.AnalyzeFormatting{},
	}
	if len(got) != len(want) {
		t.Fatalf("parsed %d commands, want %d: %#v", len(got), len(want), got)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("command %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestParse_Skips(t *testing.T) {
	tests := []struct {
		name      string
		directive string
	}{
		{"unknown type", `[ACTION:DELETE_ALL:"x"]`},
		{"find replace missing replacement", `[ACTION:FIND_REPLACE:"a"]`},
		{"find replace empty search", `[ACTION:FIND_REPLACE:"":"b"]`},
		{"find replace bad options", `[ACTION:FIND_REPLACE:"a":"b":{"replaceAll":"yes"}]`},
		{"empty insert", `[ACTION:INSERT_AT_END:""]`},
		{"heading unquoted", `[ACTION:INSERT_AFTER_HEADING:Methods:"x"]`},
		{"paragraph index not a number", `[ACTION:INSERT_AT_PARAGRAPH:two:"x":"after"]`},
		{"paragraph negative index", `[ACTION:INSERT_AT_PARAGRAPH:-1:"x":"after"]`},
		{"paragraph bad position", `[ACTION:INSERT_AT_PARAGRAPH:1:"x":"middle"]`},
		{"format text not json", `[ACTION:FORMAT_TEXT:"x":bold]`},
		{"table zero rows", `[ACTION:CREATE_TABLE:0:2:"end"]`},
		{"table too many rows", `[ACTION:CREATE_TABLE:1000000:2:"end"]`},
		{"table too many columns", `[ACTION:CREATE_TABLE:2:64:"end"]`},
		{"table oversized", `[ACTION:CREATE_TABLE:1000000:1000000:"end"]`},
		{"table bad location", `[ACTION:CREATE_TABLE:2:2:"top"]`},
		{"paragraphs bad alignment", `[ACTION:FORMAT_PARAGRAPHS:{}:{"alignment":"Diagonal"}]`},
		{"paragraphs unbalanced", `[ACTION:FORMAT_PARAGRAPHS:{"excludeHeadings":true:{}]`},
		{"unterminated string", `[ACTION:INSERT_AFTER_HEADING:"Methods:x]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewParser().ParseReport(tt.directive + ` [ACTION:INSERT_AT_END:"ok"]`)
			if len(res.Skipped) != 1 {
				t.Errorf("Skipped = %+v, want one", res.Skipped)
			}
			if len(res.Commands) != 1 || res.Commands[0] != (models.InsertAtEnd{Content: "ok"}) {
				t.Errorf("Commands = %#v", res.Commands)
			}
		})
	}
}

func TestParse_IndentDefaults(t *testing.T) {
	tests := map[string]float64{
		`[ACTION:INDENT_PARAGRAPHS:24]`:     24,
		`[ACTION:INDENT_PARAGRAPHS:"18"]`:   18,
		`[ACTION:INDENT_PARAGRAPHS:12pt]`:   12,
		`[ACTION:INDENT_PARAGRAPHS:lots]`:   DefaultIndent,
		`[ACTION:INDENT_PARAGRAPHS:0]`:      DefaultIndent,
		`[ACTION:INDENT_PARAGRAPHS]`:        DefaultIndent,
		`[ACTION:INDENT_PARAGRAPHS:-10]`:    -10,
		`[ACTION:INDENT_PARAGRAPHS: 40.5 ]`: 40,
		`[ACTION:INDENT_PARAGRAPHS:24.7]`:   24,
		`[ACTION:INDENT_PARAGRAPHS:NaN]`:    DefaultIndent,
		`[ACTION:INDENT_PARAGRAPHS:Inf]`:    DefaultIndent,
		`[ACTION:INDENT_PARAGRAPHS:-Inf]`:   DefaultIndent,
		`[ACTION:INDENT_PARAGRAPHS:1e308]`:  1,
		`[ACTION:INDENT_PARAGRAPHS:9e99x]`:  9,
	}
	for in, want := range tests {
		got := NewParser().Parse(in)
		if len(got) != 1 || got[0] != (models.IndentParagraphs{Amount: want}) {
			t.Errorf("Parse(%s) = %#v, want amount %v", in, got, want)
		}
	}
}

func TestParse_NoDirectives(t *testing.T) {
	res := NewParser().ParseReport("Plain reply with [brackets] and ACTION words.")
	if res.Commands == nil || len(res.Commands) != 0 || len(res.Skipped) != 0 {
		t.Errorf("ParseReport() = %+v", res)
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		payload string
		want    []field
	}{
		{`"a":"b"`, []field{{value: "a", quoted: true}, {value: "b", quoted: true}}},
		{`"time: 5pm":"x"`, []field{{value: "time: 5pm", quoted: true}, {value: "x", quoted: true}}},
		{`{"a":{"b":"}"}}:3`, []field{{value: `{"a":{"b":"}"}}`, object: true}, {value: "3"}}},
		{`1:2:`, []field{{value: "1"}, {value: "2"}, {value: ""}}},
		{``, nil},
	}
	for _, tt := range tests {
		got, err := splitFields(tt.payload)
		if err != nil {
			t.Errorf("splitFields(%q) error: %v", tt.payload, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFields(%q) = %+v, want %+v", tt.payload, got, tt.want)
		}
	}
	if _, err := splitFields(`"a"b`); err == nil {
		t.Error("expected error for text after closing quote")
	}
}
