package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagrams/pkg/codec"
	"github.com/matzehuels/diagrams/pkg/diagram"
	"github.com/matzehuels/diagrams/pkg/diagram/pie"
	"github.com/matzehuels/diagrams/pkg/diff"
)

// isolate points config and data lookups at a temporary directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

// runCLI executes the root command with args and returns stdout and the
// log output.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), logs.String(), err
}

func writePie(t *testing.T, dir, name string, items ...pie.Slice) string {
	t.Helper()
	p, err := pie.New("Pets", items)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := codec.ExportJSON(p, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDemo(t *testing.T) {
	isolate(t)
	for _, name := range []string{"gitgraph", "flowchart", "pie", "erd"} {
		t.Run(name, func(t *testing.T) {
			out, logs, err := runCLI(t, "demo", name)
			if err != nil {
				t.Fatalf("demo %s: %v\n%s", name, err, logs)
			}
			d, err := codec.Unmarshal([]byte(out), codec.WithStrictChecksum(true))
			if err != nil {
				t.Fatalf("demo output does not decode: %v\n%s", err, out)
			}
			if len(d.Warnings()) != 0 {
				t.Errorf("Warnings() = %v", d.Warnings())
			}
		})
	}
}

func TestDemoYAML(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "demo", "pie", "-o", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "type: pie_diagram") {
		t.Errorf("output = %s", out)
	}
	if _, err := codec.UnmarshalYAML([]byte(out)); err != nil {
		t.Errorf("UnmarshalYAML: %v", err)
	}
}

func TestDemoRejectsUnknownKind(t *testing.T) {
	isolate(t)
	if _, _, err := runCLI(t, "demo", "sankey"); err == nil {
		t.Error("expected an error for an unknown demo")
	}
}

func TestTypes(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "types")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"GitgraphDiagram", "gitgraph_diagram", "ERDiagram", "er_diagram"} {
		if !strings.Contains(out, want) {
			t.Errorf("types output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, "types", "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]string
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("types json: %v\n%s", err, out)
	}
	if len(entries) != 4 || entries[0]["kind"] != "ERDiagram" || entries[0]["type"] != "er_diagram" {
		t.Errorf("entries = %v", entries)
	}
}

func TestInspect(t *testing.T) {
	dir := isolate(t)
	path := writePie(t, dir, "pets.json", pie.Slice{Label: "Dogs", Value: 3}, pie.Slice{Label: "Cats", Value: 1})

	out, _, err := runCLI(t, "inspect", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"PieDiagram", "pie_diagram", "slices"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectReportsChecksumWarning(t *testing.T) {
	dir := isolate(t)
	path := writePie(t, dir, "pets.json", pie.Slice{Label: "Dogs", Value: 3})
	tamper(t, path)

	out, logs, err := runCLI(t, "inspect", path)
	if err != nil {
		t.Fatalf("lenient inspect: %v", err)
	}
	if !strings.Contains(out, string(diagram.WarnChecksumMismatch)) {
		t.Errorf("inspect output should list the warning:\n%s", out)
	}
	if !strings.Contains(logs, "checksum mismatch") {
		t.Errorf("warning should be logged:\n%s", logs)
	}

	if _, _, err := runCLI(t, "inspect", "--strict", path); err == nil {
		t.Error("strict inspect should fail on a tampered checksum")
	}
}

// tamper rewrites the checksum of the envelope at path.
func tamper(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	m["checksum"] = "deadbeef"
	data, err = json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInspectJSONRecomputesChecksum(t *testing.T) {
	dir := isolate(t)
	path := writePie(t, dir, "pets.json", pie.Slice{Label: "Dogs", Value: 3})
	tamper(t, path)

	out, _, err := runCLI(t, "inspect", "-o", "json", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := codec.Unmarshal([]byte(out), codec.WithStrictChecksum(true)); err != nil {
		t.Errorf("re-encoded envelope should verify: %v", err)
	}
}

func TestVerify(t *testing.T) {
	dir := isolate(t)
	good := writePie(t, dir, "good.json", pie.Slice{Label: "Dogs", Value: 3})
	bad := writePie(t, dir, "bad.json", pie.Slice{Label: "Dogs", Value: 3})
	tamper(t, bad)

	out, _, err := runCLI(t, "verify", good)
	if err != nil {
		t.Fatalf("verify good: %v\n%s", err, out)
	}
	if !strings.Contains(out, iconSuccess) {
		t.Errorf("output = %s", out)
	}

	out, _, err = runCLI(t, "verify", good, bad)
	if err == nil {
		t.Fatal("verify should fail for a tampered envelope")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("error = %v", err)
	}
	if !strings.Contains(out, "CHECKSUM_MISMATCH") {
		t.Errorf("output should name the error code:\n%s", out)
	}
}

func TestDiff(t *testing.T) {
	dir := isolate(t)
	oldPath := writePie(t, dir, "old.json", pie.Slice{Label: "Dogs", Value: 3})
	newPath := writePie(t, dir, "new.json", pie.Slice{Label: "Dogs", Value: 3}, pie.Slice{Label: "Cats", Value: 1})

	out, _, err := runCLI(t, "diff", oldPath, newPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"slices", "added", "Cats", "modified", "Dogs", "+1", "-0", "~1"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, "diff", "-o", "json", oldPath, newPath)
	if err != nil {
		t.Fatal(err)
	}
	var result map[string]diff.Delta
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("diff json: %v\n%s", err, out)
	}
	if d := result["slices"]; len(d.Added) != 1 || len(d.Modified) != 1 || len(d.Removed) != 0 {
		t.Errorf("result = %+v", result)
	}

	out, _, err = runCLI(t, "diff", oldPath, oldPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "identical") {
		t.Errorf("output = %s", out)
	}
}

func TestDiffAcrossKinds(t *testing.T) {
	dir := isolate(t)
	piePath := writePie(t, dir, "pie.json", pie.Slice{Label: "Dogs", Value: 3})
	out, _, err := runCLI(t, "demo", "flowchart")
	if err != nil {
		t.Fatal(err)
	}
	flowPath := filepath.Join(dir, "flow.json")
	if err := os.WriteFile(flowPath, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "diff", piePath, flowPath); err == nil {
		t.Error("diffing different kinds should fail")
	}
}

func TestSnapshot(t *testing.T) {
	dir := isolate(t)
	path := writePie(t, dir, "pets.json", pie.Slice{Label: "Dogs", Value: 3})

	if _, _, err := runCLI(t, "snapshot", "diff", path); err == nil {
		t.Error("diff before any record should fail")
	}

	out, _, err := runCLI(t, "snapshot", "record", path)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.Contains(out, "Recorded") || !strings.Contains(out, "pets") {
		t.Errorf("record output = %s", out)
	}

	writePie(t, dir, "pets.json", pie.Slice{Label: "Dogs", Value: 3}, pie.Slice{Label: "Cats", Value: 1})
	out, _, err = runCLI(t, "snapshot", "diff", path)
	if err != nil {
		t.Fatalf("snapshot diff: %v", err)
	}
	if !strings.Contains(out, "Cats") {
		t.Errorf("snapshot diff output = %s", out)
	}

	if _, _, err := runCLI(t, "snapshot", "record", path); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, "snapshot", "list", "pets", "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("list json: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %v", entries)
	}

	out, _, err = runCLI(t, "snapshot", "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "data", appName, "snapshots")
	if strings.TrimSpace(out) != want {
		t.Errorf("path = %q, want %q", strings.TrimSpace(out), want)
	}

	if _, _, err := runCLI(t, "snapshot", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(want); !os.IsNotExist(err) {
		t.Errorf("snapshot dir should be removed, stat err = %v", err)
	}
}

func TestReadStdin(t *testing.T) {
	isolate(t)
	p, err := pie.New("Pets", []pie.Slice{{Label: "Dogs", Value: 3}})
	if err != nil {
		t.Fatal(err)
	}
	text, err := codec.MarshalYAML(p)
	if err != nil {
		t.Fatal(err)
	}

	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetIn(bytes.NewReader(text))
	root.SetArgs([]string{"inspect", "-"})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect -: %v\n%s", err, logs.String())
	}
	if !strings.Contains(out.String(), p.Checksum()) {
		t.Errorf("output = %s", out.String())
	}
}

func TestIsYAML(t *testing.T) {
	tests := []struct {
		path string
		data string
		want bool
	}{
		{"a.yaml", `{"type": "x"}`, true},
		{"a.YML", "", true},
		{"a.json", "type: x", false},
		{"-", `  {"type": "x"}`, false},
		{"-", "type: x", true},
		{"-", "", false},
	}
	for _, tt := range tests {
		if got := isYAML(tt.path, []byte(tt.data)); got != tt.want {
			t.Errorf("isYAML(%q, %q) = %v, want %v", tt.path, tt.data, got, tt.want)
		}
	}
}

func TestHistoryName(t *testing.T) {
	if got := historyName("", "/tmp/graphs/release.json"); got != "release" {
		t.Errorf("historyName = %q", got)
	}
	if got := historyName("custom", "/tmp/graphs/release.json"); got != "custom" {
		t.Errorf("historyName = %q", got)
	}
}

func TestRegisterCompletions(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	for _, path := range [][]string{{"inspect"}, {"verify"}, {"diff"}, {"snapshot", "record"}, {"snapshot", "diff"}} {
		cmd, _, err := root.Find(path)
		if err != nil {
			t.Fatalf("find %v: %v", path, err)
		}
		if cmd.ValidArgsFunction == nil {
			t.Errorf("%s should complete envelope files", cmd.CommandPath())
			continue
		}
		exts, directive := cmd.ValidArgsFunction(cmd, nil, "")
		if directive != cobra.ShellCompDirectiveFilterFileExt || !slices.Equal(exts, envelopeExts) {
			t.Errorf("%s completion = %v, %v", cmd.CommandPath(), exts, directive)
		}
	}

	types, _, err := root.Find([]string{"types"})
	if err != nil {
		t.Fatal(err)
	}
	if types.ValidArgsFunction != nil {
		t.Error("types takes no file arguments")
	}

	formats, directive := completeOutput(root, nil, "")
	if directive != cobra.ShellCompDirectiveNoFileComp || !slices.Equal(formats, outputFormats) {
		t.Errorf("completeOutput = %v, %v", formats, directive)
	}
}

func TestCompletionScript(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "diagrams") {
		t.Error("bash completion should mention the program name")
	}
}
