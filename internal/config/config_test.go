package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/quill/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
assistant:
  context_window: 32000
  default_mode: ask
journal:
  database_path: "/tmp/quill.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Assistant.ContextWindow != 32000 || cfg.Assistant.DefaultMode != models.ModeAsk {
		t.Errorf("unexpected assistant config: %+v", cfg.Assistant)
	}
	if cfg.Journal.DatabasePath != "/tmp/quill.db" {
		t.Errorf("database_path = %s", cfg.Journal.DatabasePath)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debug: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
documents:
  root: "./manuscripts"
journal:
  database_path: "./data/journal.db"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "manuscripts"); cfg.Documents.Root != want {
		t.Errorf("root = %s, want %s", cfg.Documents.Root, want)
	}
	if want := filepath.Join(dir, "data", "journal.db"); cfg.Journal.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Journal.DatabasePath, want)
	}
}

func TestLoad_errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("default server: %+v", cfg.Server)
	}
	if cfg.Assistant.ContextWindow != 128000 {
		t.Errorf("default context window: got %d", cfg.Assistant.ContextWindow)
	}
	if cfg.Assistant.DefaultMode != models.ModeAgent {
		t.Errorf("default mode: got %s", cfg.Assistant.DefaultMode)
	}
	if cfg.Assistant.MaxRelated != 5 {
		t.Errorf("default max related: got %d", cfg.Assistant.MaxRelated)
	}
	if cfg.Documents.Root != "." || cfg.Documents.CacheSize != 32 {
		t.Errorf("default documents: %+v", cfg.Documents)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("default search: %+v", cfg.Search)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestDefault(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	if cfg.Documents.Root != dir {
		t.Errorf("root = %s, want %s", cfg.Documents.Root, dir)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Server.Port = 70000
	cfg.Assistant.DefaultMode = "poet"
	cfg.Assistant.CustomMode.ContextStrategy = "everything"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"Config.Server.Port", "Config.Assistant.DefaultMode", "Config.Assistant.CustomMode.ContextStrategy"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q should mention %s", err, field)
		}
	}
}

func TestOrDefaultFlags(t *testing.T) {
	var d DocumentsConfig
	var j JournalConfig
	if !d.WatchOrDefault() || !j.EnabledOrDefault() {
		t.Error("unset watch and journal should default to true")
	}
	f := false
	d.Watch, j.Enabled = &f, &f
	if d.WatchOrDefault() || j.EnabledOrDefault() {
		t.Error("explicit false should be honoured")
	}
}

func TestCustomModeConfig_ModeConfig(t *testing.T) {
	m := CustomModeConfig{Name: "Editor", SystemPrompt: "Be terse."}.ModeConfig()
	if !m.AllowActions {
		t.Error("allow_actions should default to true")
	}
	off := false
	m = CustomModeConfig{AllowActions: &off, ContextStrategy: models.ContextFull}.ModeConfig()
	if m.AllowActions || m.ContextStrategy != models.ContextFull {
		t.Errorf("unexpected mode %+v", m)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	allow := false
	cfg := &Config{
		Server:    ServerConfig{Host: "localhost", Port: 9090},
		Journal:   JournalConfig{DatabasePath: "/tmp/db"},
		Assistant: AssistantConfig{CustomMode: CustomModeConfig{Name: "Editor", AllowActions: &allow}},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if cm := loaded.Assistant.CustomMode; cm.Name != "Editor" || cm.AllowActions == nil || *cm.AllowActions {
		t.Errorf("custom mode round trip: %+v", cm)
	}
}
