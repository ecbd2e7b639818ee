package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Output formats accepted by --output and the config file.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var outputFormats = []string{OutputText, OutputJSON, OutputYAML}

// Config holds settings read from config.toml. Command-line flags override
// every field.
type Config struct {
	StrictChecksum bool   `toml:"strict_checksum"`
	Output         string `toml:"output"`
	LogLevel       string `toml:"log_level"`
	SnapshotDir    string `toml:"snapshot_dir"`
}

// defaultConfig returns the settings used when no file is present.
func defaultConfig() Config {
	return Config{Output: OutputText, LogLevel: "info"}
}

// loadConfig reads the TOML file at path on top of the defaults. A missing
// file is only an error when required is set.
func loadConfig(path string, required bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if !slices.Contains(outputFormats, c.Output) {
		return fmt.Errorf("output must be one of %v, got %q", outputFormats, c.Output)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// level returns the configured log level, defaulting to info.
func (c Config) level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// =============================================================================
// Paths
// =============================================================================

// configPath returns the default config file location
// (~/.config/diagrams/config.toml, or under XDG_CONFIG_HOME).
func configPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// snapshotDir returns the default snapshot store directory
// (~/.local/share/diagrams/snapshots, or under XDG_DATA_HOME).
func snapshotDir() (string, error) {
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		return filepath.Join(home, appName, "snapshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "snapshots"), nil
}
