package config

import (
	"github.com/hyperjump/quill/internal/chunking"
	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/scan"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Assistant.ContextWindow == 0 {
		cfg.Assistant.ContextWindow = chunking.DefaultContextWindow
	}
	if cfg.Assistant.DefaultMode == "" {
		cfg.Assistant.DefaultMode = models.ModeAgent
	}
	if cfg.Assistant.MaxRelated == 0 {
		cfg.Assistant.MaxRelated = scan.DefaultMaxRelated
	}
	if cfg.Assistant.StructureLimit == 0 {
		cfg.Assistant.StructureLimit = 200
	}
	if cfg.Documents.Root == "" {
		cfg.Documents.Root = "."
	}
	if cfg.Documents.CacheSize == 0 {
		cfg.Documents.CacheSize = host.DefaultCacheSize
	}
	if cfg.Journal.DatabasePath == "" {
		cfg.Journal.DatabasePath = "/usr/local/var/quill/data/db/journal.db"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.SectionBoost == 0 {
		cfg.Search.SectionBoost = 2.0
	}
}
