// Package assistant prepares assistant turns against a document and applies the replies.
package assistant

import (
	"errors"
	"fmt"

	"github.com/hyperjump/quill/internal/models"
)

// ErrUnknownMode is returned for a chat mode that is not agent, ask or custom.
var ErrUnknownMode = errors.New("unknown chat mode")

const agentPrompt = `You are Quill Agent, an assistant that edits the user's document directly. You can:

- rewrite, restructure and extend the document
- fix grammar, spelling and clarity
- insert headings, sections, tables and new content
- change paragraph and character formatting

When the user asks for a change, make it with editing directives rather than only describing it.
Keep explanations brief and say what you changed.`

const askPrompt = `You are Quill Advisor, a writing companion that reads the user's document and discusses it. You can:

- answer questions about content, themes and structure
- give feedback and suggest improvements
- explain concepts and help with research

You never change the document. Suggest wording the user can apply themselves and ask clarifying questions when the request is ambiguous.`

const customPrompt = "You are a helpful AI assistant."

var (
	agentMode = models.ModeConfig{
		Name:            "Agent",
		Description:     "Edits the document directly",
		SystemPrompt:    agentPrompt,
		AllowActions:    true,
		ContextStrategy: models.ContextChunked,
	}
	askMode = models.ModeConfig{
		Name:            "Ask",
		Description:     "Read-only discussion of the document",
		SystemPrompt:    askPrompt,
		AllowActions:    false,
		ContextStrategy: models.ContextFull,
	}
)

// DefaultCustomMode is the custom mode used when none is configured.
func DefaultCustomMode() models.ModeConfig {
	return models.ModeConfig{
		Name:            "Custom",
		Description:     "User-defined custom mode",
		SystemPrompt:    customPrompt,
		AllowActions:    true,
		ContextStrategy: models.ContextChunked,
	}
}

// Modes resolves chat modes to their configuration.
type Modes struct {
	custom models.ModeConfig
}

// NewModes builds the mode set. Empty fields of custom take the DefaultCustomMode values;
// AllowActions is used as given.
func NewModes(custom *models.ModeConfig) Modes {
	def := DefaultCustomMode()
	if custom == nil {
		return Modes{custom: def}
	}
	c := *custom
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.Description == "" {
		c.Description = def.Description
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = def.SystemPrompt
	}
	if c.ContextStrategy == "" {
		c.ContextStrategy = def.ContextStrategy
	}
	return Modes{custom: c}
}

// Lookup returns the configuration for mode. An empty mode is agent.
func (m Modes) Lookup(mode models.ChatMode) (models.ModeConfig, error) {
	switch mode {
	case models.ModeAgent, "":
		return agentMode, nil
	case models.ModeAsk:
		return askMode, nil
	case models.ModeCustom:
		return m.custom, nil
	}
	return models.ModeConfig{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}
