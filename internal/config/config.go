// Package config loads tool defaults from ~/.vaultsearch/config.toml.
// Flags always win over the file; the file wins over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user-tunable defaults for the CLI and TUI.
type Config struct {
	// SnippetLength bounds result previews, in runes.
	SnippetLength int `toml:"snippet_length"`
	// PreviewCount is how many hits the search command prints.
	PreviewCount int `toml:"preview_count"`
	// ExportFormat is the default export format: md, json, or txt.
	ExportFormat string `toml:"export_format"`
	// CodeDir is the default directory for extracted code blocks.
	CodeDir string `toml:"code_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SnippetLength: 240,
		PreviewCount:  10,
		ExportFormat:  "md",
		CodeDir:       "recovered_code",
	}
}

// Path returns the config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".vaultsearch", "config.toml"), nil
}

// Load reads the config file, if present, on top of the defaults. A
// missing file is not an error; a malformed one is.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads a specific config file on top of the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.SnippetLength <= 0 {
		cfg.SnippetLength = Default().SnippetLength
	}
	if cfg.PreviewCount <= 0 {
		cfg.PreviewCount = Default().PreviewCount
	}
	return cfg, nil
}
