// Package config provides configuration loading and structs for Quill.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hyperjump/quill/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Assistant AssistantConfig `yaml:"assistant"`
	Documents DocumentsConfig `yaml:"documents"`
	Journal   JournalConfig   `yaml:"journal"`
	Search    SearchConfig    `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

// AssistantConfig holds turn preparation settings.
type AssistantConfig struct {
	ContextWindow   int              `yaml:"context_window" validate:"min=1000"`
	DefaultMode     models.ChatMode  `yaml:"default_mode" validate:"oneof=agent ask custom"`
	IncludeMetadata bool             `yaml:"include_metadata"`
	MaxRelated      int              `yaml:"max_related" validate:"min=1,max=50"`
	StructureLimit  int              `yaml:"structure_limit" validate:"min=0"`
	CustomMode      CustomModeConfig `yaml:"custom_mode"`
}

// CustomModeConfig is the user-defined chat mode. Empty fields take built-in defaults.
type CustomModeConfig struct {
	Name            string                 `yaml:"name,omitempty"`
	Description     string                 `yaml:"description,omitempty"`
	SystemPrompt    string                 `yaml:"system_prompt,omitempty"`
	AllowActions    *bool                  `yaml:"allow_actions,omitempty"`
	ContextStrategy models.ContextStrategy `yaml:"context_strategy,omitempty" validate:"omitempty,oneof=full chunked selection"`
}

// ModeConfig converts c to a mode. AllowActions defaults to true when unset.
func (c CustomModeConfig) ModeConfig() models.ModeConfig {
	allow := true
	if c.AllowActions != nil {
		allow = *c.AllowActions
	}
	return models.ModeConfig{
		Name:            c.Name,
		Description:     c.Description,
		SystemPrompt:    c.SystemPrompt,
		AllowActions:    allow,
		ContextStrategy: c.ContextStrategy,
	}
}

// DocumentsConfig holds the document root and open-document cache.
type DocumentsConfig struct {
	Root      string `yaml:"root" validate:"required"`
	Watch     *bool  `yaml:"watch"`
	CacheSize int    `yaml:"cache_size" validate:"min=1"`
}

// WatchOrDefault returns whether to reload documents on external change; defaults to true when unset.
func (d *DocumentsConfig) WatchOrDefault() bool {
	if d.Watch != nil {
		return *d.Watch
	}
	return true
}

// JournalConfig holds the action journal database.
type JournalConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	DatabasePath string `yaml:"database_path" validate:"required"`
}

// EnabledOrDefault returns whether turns are journaled; defaults to true when unset.
func (j *JournalConfig) EnabledOrDefault() bool {
	if j.Enabled != nil {
		return *j.Enabled
	}
	return true
}

// SearchConfig holds passage search settings.
type SearchConfig struct {
	DefaultLimit int     `yaml:"default_limit" validate:"min=1"`
	MaxLimit     int     `yaml:"max_limit" validate:"gtefield=DefaultLimit"`
	SectionBoost float64 `yaml:"section_boost" validate:"min=0"`
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.expandPaths(filepath.Dir(path))
	return &cfg, nil
}

// Default returns the default config with relative paths resolved against dir.
func Default(dir string) *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.expandPaths(dir)
	return &cfg
}

func (c *Config) expandPaths(dir string) {
	c.Documents.Root = expandPath(c.Documents.Root, dir)
	c.Journal.DatabasePath = expandPath(c.Journal.DatabasePath, dir)
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks field constraints and reports every violation in one error.
func Validate(cfg *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
