package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagrams/pkg/buildinfo"
	"github.com/matzehuels/diagrams/pkg/codec"
	"github.com/matzehuels/diagrams/pkg/diagram"
)

// appName is the application name used for directories and display.
const appName = "diagrams"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configFile string
	verbose    bool
	strict     bool
	output     string
}

// New creates a CLI logging to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Inspect, verify and diff diagram envelopes",
		Long: `diagrams works with diagram envelopes: JSON or YAML documents carrying a
type, a version, a content checksum and the diagram data. It decodes them,
checks their checksums, and compares two versions element by element.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default ~/.config/diagrams/config.toml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&c.strict, "strict", false, "treat checksum mismatches as errors")
	flags.StringVarP(&c.output, "output", "o", "", "output format: text, json or yaml")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// setup loads the config file and applies flag overrides.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	path, required := c.configFile, true
	if path == "" {
		required = false
		if p, err := configPath(); err == nil {
			path = p
		}
	}
	cfg, err := loadConfig(path, required)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.StrictChecksum = c.strict
	}
	if flags.Changed("output") {
		cfg.Output = c.output
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	c.Config = cfg
	c.SetLogLevel(cfg.level())

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Decoding
// =============================================================================

func (c *CLI) decoderOptions() []codec.Option {
	return []codec.Option{
		codec.WithLogger(c.Logger),
		codec.WithStrictChecksum(c.Config.StrictChecksum),
	}
}

// readDiagram decodes the envelope at path ("-" reads stdin). YAML is
// chosen by file extension, or by content for stdin.
func (c *CLI) readDiagram(cmd *cobra.Command, path string) (diagram.Diagram, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	loggerFromContext(cmd.Context()).Debug("reading envelope", "path", path, "bytes", len(data))
	if isYAML(path, data) {
		return codec.UnmarshalYAML(data, c.decoderOptions()...)
	}
	return codec.NewDecoder(c.decoderOptions()...).DecodeContext(contextOf(cmd), data)
}

func isYAML(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	case ".json":
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '['
}

// writeDiagram prints d in the configured output format. Text output falls
// back to JSON since envelopes have no text rendering.
func (c *CLI) writeDiagram(w io.Writer, d diagram.Diagram) error {
	if c.Config.Output == OutputYAML {
		out, err := codec.MarshalYAML(d)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	return codec.WriteJSON(d, w)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
