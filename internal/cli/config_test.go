package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
strict_checksum = true
output = "yaml"
log_level = "debug"
snapshot_dir = "/var/lib/diagrams"
`)
	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := Config{StrictChecksum: true, Output: OutputYAML, LogLevel: "debug", SnapshotDir: "/var/lib/diagrams"}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
	if cfg.level() != log.DebugLevel {
		t.Errorf("level() = %v", cfg.level())
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, `strict_checksum = true`), true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != OutputText || cfg.LogLevel != "info" || !cfg.StrictChecksum {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := loadConfig(missing, false)
	if err != nil {
		t.Fatalf("optional missing config: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	if _, err := loadConfig(missing, true); err == nil {
		t.Error("a required config file must exist")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", `output = `, "config.toml"},
		{"unknown key", `colour = "red"`, "unknown key"},
		{"bad output", `output = "xml"`, "output must be one of"},
		{"bad level", `log_level = "loud"`, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body), true)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestConfigFlagsOverrideFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, `output = "json"`)
	piePath := writePie(t, dir, "pets.json")

	out, _, err := runCLI(t, "--config", path, "inspect", piePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "{") {
		t.Errorf("config output=json should print an envelope:\n%s", out)
	}

	out, _, err = runCLI(t, "--config", path, "-o", "text", "inspect", piePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "PieDiagram") {
		t.Errorf("--output text should override the file:\n%s", out)
	}
}

func TestDefaultConfigFileIsRead(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "config", appName)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(`output = "json"`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, "types")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "[") {
		t.Errorf("types should print json:\n%s", out)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/custom-data")

	if p, err := configPath(); err != nil || p != filepath.Join("/tmp/custom-config", appName, "config.toml") {
		t.Errorf("configPath() = %q, %v", p, err)
	}
	if p, err := snapshotDir(); err != nil || p != filepath.Join("/tmp/custom-data", appName, "snapshots") {
		t.Errorf("snapshotDir() = %q, %v", p, err)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if p, _ := configPath(); p != filepath.Join(home, ".config", appName, "config.toml") {
		t.Errorf("configPath() = %q", p)
	}
	if p, _ := snapshotDir(); p != filepath.Join(home, ".local", "share", appName, "snapshots") {
		t.Errorf("snapshotDir() = %q", p)
	}
}
