package models

// TriggerCategory names a kind of cross-document concern detected in a query.
type TriggerCategory string

const (
	TriggerCharacterReference TriggerCategory = "character_reference"
	TriggerPlotConsistency    TriggerCategory = "plot_consistency"
	TriggerTerminology        TriggerCategory = "terminology"
	TriggerCrossReference     TriggerCategory = "cross_reference"
	TriggerStyleConsistency   TriggerCategory = "style_consistency"
)

// ScanTrigger is one detected category with its matched keywords.
type ScanTrigger struct {
	Category          TriggerCategory `json:"category"`
	Confidence        float64         `json:"confidence"`
	Keywords          []string        `json:"keywords"`
	SuggestedSections []string        `json:"suggested_sections"`
}

// ContextualScanResult is the output of one contextual scan.
type ContextualScanResult struct {
	PrimaryChunk  Chunk         `json:"primary_chunk"`
	RelatedChunks []Chunk       `json:"related_chunks"`
	Triggers      []ScanTrigger `json:"triggers"`
	Expanded      bool          `json:"expanded"`
	Reason        string        `json:"reason"`
	TotalTokens   int           `json:"total_tokens"`
}

// ChatMode selects how a turn is prepared and whether edits are applied.
type ChatMode string

const (
	ModeAgent  ChatMode = "agent"
	ModeAsk    ChatMode = "ask"
	ModeCustom ChatMode = "custom"
)

// ContextStrategy selects how much of the document goes into the prompt.
type ContextStrategy string

const (
	ContextFull      ContextStrategy = "full"
	ContextChunked   ContextStrategy = "chunked"
	ContextSelection ContextStrategy = "selection"
)

// ModeConfig describes one chat mode.
type ModeConfig struct {
	Name            string          `json:"name" yaml:"name"`
	Description     string          `json:"description" yaml:"description"`
	SystemPrompt    string          `json:"system_prompt" yaml:"system_prompt"`
	AllowActions    bool            `json:"allow_actions" yaml:"allow_actions"`
	ContextStrategy ContextStrategy `json:"context_strategy" yaml:"context_strategy" validate:"omitempty,oneof=full chunked selection"`
}
