package main

import (
	"fmt"

	"github.com/hyperjump/quill/internal/assistant"
	"github.com/hyperjump/quill/internal/config"
	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/journal"
	"github.com/hyperjump/quill/pkg/utils"
	"go.uber.org/zap"
)

// Components holds the initialized services shared by the commands.
type Components struct {
	Registry  *host.Registry
	Journal   journal.Journal
	Processor *assistant.Processor
}

// Close releases the journal and stops any registry watcher.
func (c *Components) Close() {
	if c.Registry != nil {
		c.Registry.Close()
	}
	if c.Journal != nil {
		_ = c.Journal.Close()
	}
}

// initializeComponents opens the document registry and, when withJournal is set and the
// journal is enabled, the SQLite journal.
func initializeComponents(cfg *config.Config, logger *zap.Logger, withJournal bool) (*Components, error) {
	logger = utils.OrNop(logger)
	reg, err := host.NewRegistry(cfg.Documents.Root, cfg.Documents.CacheSize, host.WithRegistryLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document registry: %w", err)
	}
	c := &Components{Registry: reg}

	custom := cfg.Assistant.CustomMode.ModeConfig()
	opts := []assistant.Option{
		assistant.WithLogger(logger),
		assistant.WithModes(assistant.NewModes(&custom)),
		assistant.WithContextWindow(cfg.Assistant.ContextWindow),
		assistant.WithIncludeMetadata(cfg.Assistant.IncludeMetadata),
		assistant.WithMaxRelated(cfg.Assistant.MaxRelated),
		assistant.WithStructureLimit(cfg.Assistant.StructureLimit),
	}
	if withJournal && cfg.Journal.EnabledOrDefault() {
		j, err := journal.NewSQLiteJournal(cfg.Journal.DatabasePath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize journal: %w", err)
		}
		c.Journal = j
		opts = append(opts, assistant.WithJournal(j))
		logger.Debug("journal opened", zap.String("path", cfg.Journal.DatabasePath))
	}
	c.Processor = assistant.NewProcessor(opts...)
	return c, nil
}
