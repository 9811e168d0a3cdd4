package models

// ActionType is the directive name used inside [ACTION:TYPE:PAYLOAD].
type ActionType string

const (
	ActionFindReplace        ActionType = "FIND_REPLACE"
	ActionInsertAtStart      ActionType = "INSERT_AT_START"
	ActionInsertAtEnd        ActionType = "INSERT_AT_END"
	ActionInsertAfterHeading ActionType = "INSERT_AFTER_HEADING"
	ActionInsertAtParagraph  ActionType = "INSERT_AT_PARAGRAPH"
	ActionFormatText         ActionType = "FORMAT_TEXT"
	ActionCreateTable        ActionType = "CREATE_TABLE"
	ActionFormatParagraphs   ActionType = "FORMAT_PARAGRAPHS"
	ActionIndentParagraphs   ActionType = "INDENT_PARAGRAPHS"
	ActionAnalyzeFormatting  ActionType = "ANALYZE_FORMATTING"
)

// ActionTypes lists every directive in the order they are documented to the model.
var ActionTypes = []ActionType{
	ActionFindReplace,
	ActionInsertAtStart,
	ActionInsertAtEnd,
	ActionInsertAfterHeading,
	ActionInsertAtParagraph,
	ActionFormatText,
	ActionCreateTable,
	ActionFormatParagraphs,
	ActionIndentParagraphs,
	ActionAnalyzeFormatting,
}

// ActionCommand is one parsed edit directive.
type ActionCommand interface {
	Type() ActionType
}

// InsertPosition places text relative to a paragraph.
type InsertPosition string

const (
	PositionBefore  InsertPosition = "before"
	PositionAfter   InsertPosition = "after"
	PositionReplace InsertPosition = "replace"
)

// TableLocation places a new table.
type TableLocation string

const (
	LocationStart  TableLocation = "start"
	LocationEnd    TableLocation = "end"
	LocationCursor TableLocation = "cursor"
)

type FindReplace struct {
	Search  string             `json:"search" validate:"required"`
	Replace string             `json:"replace"`
	Options FindReplaceOptions `json:"options"`
}

type InsertAtStart struct {
	Content string `json:"content" validate:"required"`
}

type InsertAtEnd struct {
	Content string `json:"content" validate:"required"`
}

type InsertAfterHeading struct {
	Heading string `json:"heading" validate:"required"`
	Content string `json:"content"`
}

type InsertAtParagraph struct {
	Index    int            `json:"index" validate:"min=0"`
	Content  string         `json:"content"`
	Position InsertPosition `json:"position" validate:"oneof=before after replace"`
}

type FormatText struct {
	Text       string         `json:"text" validate:"required"`
	Formatting TextFormatting `json:"formatting"`
}

// MaxTableRows and MaxTableColumns bound CREATE_TABLE. Word allows at most 63 columns.
const (
	MaxTableRows    = 1000
	MaxTableColumns = 63
)

type CreateTable struct {
	Rows     int           `json:"rows" validate:"min=1,max=1000"`
	Columns  int           `json:"columns" validate:"min=1,max=63"`
	Location TableLocation `json:"location" validate:"oneof=start end cursor"`
}

type FormatParagraphs struct {
	Criteria   ParagraphCriteria   `json:"criteria"`
	Formatting ParagraphFormatting `json:"formatting"`
}

type IndentParagraphs struct {
	Amount float64 `json:"amount"`
}

type AnalyzeFormatting struct{}

func (FindReplace) Type() ActionType        { return ActionFindReplace }
func (InsertAtStart) Type() ActionType      { return ActionInsertAtStart }
func (InsertAtEnd) Type() ActionType        { return ActionInsertAtEnd }
func (InsertAfterHeading) Type() ActionType { return ActionInsertAfterHeading }
func (InsertAtParagraph) Type() ActionType  { return ActionInsertAtParagraph }
func (FormatText) Type() ActionType         { return ActionFormatText }
func (CreateTable) Type() ActionType        { return ActionCreateTable }
func (FormatParagraphs) Type() ActionType   { return ActionFormatParagraphs }
func (IndentParagraphs) Type() ActionType   { return ActionIndentParagraphs }
func (AnalyzeFormatting) Type() ActionType  { return ActionAnalyzeFormatting }

// ActionResult is the host outcome of one successfully dispatched command.
// Seq is the command's position in parse order.
type ActionResult struct {
	Seq      int                 `json:"seq"`
	Type     ActionType          `json:"type"`
	Command  ActionCommand       `json:"command"`
	Count    int                 `json:"count,omitempty"`
	Found    *bool               `json:"found,omitempty"`
	Analysis *FormattingAnalysis `json:"analysis,omitempty"`
}

// ActionFailure records a command the host rejected.
type ActionFailure struct {
	Seq     int           `json:"seq"`
	Type    ActionType    `json:"type"`
	Command ActionCommand `json:"command"`
	Err     string        `json:"error"`
}

// ExecutionReport is the outcome of dispatching a batch of commands.
type ExecutionReport struct {
	Results  []ActionResult  `json:"results"`
	Failures []ActionFailure `json:"failures"`
}

// SkippedDirective is an [ACTION:...] envelope the parser could not decode.
type SkippedDirective struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}
