// Command quill prepares assistant turns against documents and applies the edits in
// model replies.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hyperjump/quill/internal/config"
	"github.com/joho/godotenv"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/quill/config.yaml"

// loadConfig resolves the config path and loads it. An explicit --config or QUILL_CONFIG
// must exist. Otherwise config.yaml in the current directory is preferred over the
// default path, and when neither exists the built-in defaults are used with the current
// directory as document root. QUILL_DEBUG overrides the debug setting.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		path = os.Getenv("QUILL_CONFIG")
	}
	cfg, loaded, err := resolveConfig(path)
	if err != nil {
		return nil, "", err
	}
	if v := os.Getenv("QUILL_DEBUG"); v != "" {
		if debug, perr := strconv.ParseBool(v); perr == nil {
			cfg.Debug = debug
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, loaded, nil
}

func resolveConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	for _, candidate := range []string{filepath.Join(cwd, "config.yaml"), defaultConfigPath} {
		if _, statErr := os.Stat(candidate); statErr == nil {
			cfg, loadErr := config.Load(candidate)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return cfg, candidate, nil
		}
	}
	return config.Default(cwd), "", nil
}

func main() {
	_ = godotenv.Load()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
