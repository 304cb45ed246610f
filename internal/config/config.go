// Package config loads devorch's runtime settings from
// ~/.devorch/config.yaml with environment-variable overrides.
//
// A missing config file is not an error — defaults apply. A malformed
// file is fatal at startup (silently ignoring a typo'd config would be
// worse than refusing to start).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the filename inside the data directory.
const ConfigFile = "config.yaml"

// AIConfig controls the AI query gateway.
type AIConfig struct {
	// Model is the Anthropic model identifier.
	Model string `yaml:"model"`
	// MaxTokens caps each completion.
	MaxTokens int `yaml:"max_tokens"`
}

// ShellConfig controls the desktop-shell collaborators. Commands are
// templates: {path} / {dir} / {cmd} placeholders are substituted at
// launch time.
type ShellConfig struct {
	EditorCommand   string `yaml:"editor_command"`
	TerminalCommand string `yaml:"terminal_command"`
}

// Config is the full devorch runtime configuration.
type Config struct {
	// DataDir holds the SQLite database, logs, and the config file itself.
	DataDir string `yaml:"data_dir"`
	// MetricsAddr enables the Prometheus endpoint when non-empty
	// (e.g. "127.0.0.1:9290").
	MetricsAddr string      `yaml:"metrics_addr"`
	AI          AIConfig    `yaml:"ai"`
	Shell       ShellConfig `yaml:"shell"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".devorch"),
		AI: AIConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Shell: ShellConfig{
			EditorCommand:   "code {path}",
			TerminalCommand: "",
		},
	}
}

// Load reads the config file from the default data directory, applies
// it over the defaults, then applies environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if dir := os.Getenv("DEVORCH_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	return loadFrom(cfg, filepath.Join(cfg.DataDir, ConfigFile))
}

// loadFrom merges the YAML file at path (if it exists) into base.
func loadFrom(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyEnv(base), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &base); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return applyEnv(base), nil
}

// applyEnv layers environment overrides on top of file values.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("DEVORCH_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("DEVORCH_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	return cfg
}
