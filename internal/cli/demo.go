package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagrams/pkg/diagram"
	"github.com/matzehuels/diagrams/pkg/diagram/erd"
	"github.com/matzehuels/diagrams/pkg/diagram/flowchart"
	"github.com/matzehuels/diagrams/pkg/diagram/gitgraph"
	"github.com/matzehuels/diagrams/pkg/diagram/pie"
)

var demos = map[string]func() (diagram.Diagram, error){
	"gitgraph":  demoGitgraph,
	"flowchart": demoFlowchart,
	"pie":       demoPie,
	"erd":       demoERD,
}

// demoCommand creates the demo command.
func (c *CLI) demoCommand() *cobra.Command {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	slices.Sort(names)

	return &cobra.Command{
		Use:       "demo [" + strings.Join(names, "|") + "]",
		Short:     "Print a sample diagram envelope",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "gitgraph"
			if len(args) == 1 {
				name = args[0]
			}
			d, err := demos[name]()
			if err != nil {
				return fmt.Errorf("build %s demo: %w", name, err)
			}
			for _, w := range d.Warnings() {
				c.Logger.Warn(w.Message, "code", string(w.Code))
			}
			return c.writeDiagram(cmd.OutOrStdout(), d)
		},
	}
}

// demoGitgraph builds a release flow: a feature branch merged back into
// master, then a hotfix cherry-picked onto it.
func demoGitgraph() (diagram.Diagram, error) {
	g := gitgraph.New()
	steps := []func() error{
		func() error { _, err := g.Commit(gitgraph.CommitOptions{ID: "init", Message: "Initial commit"}); return err },
		func() error { _, err := g.Branch("develop", ""); return err },
		func() error { return g.Checkout("develop") },
		func() error { _, err := g.Commit(gitgraph.CommitOptions{ID: "feat", Message: "Add feature"}); return err },
		func() error {
			_, err := g.Commit(gitgraph.CommitOptions{ID: "fix", Message: "Fix bug", Kind: gitgraph.KindHighlight})
			return err
		},
		func() error { return g.Checkout("master") },
		func() error { _, err := g.Merge("develop", gitgraph.MergeOptions{ID: "release", Tag: "v1.0"}); return err },
		func() error { _, err := g.Branch("hotfix", "init"); return err },
		func() error { return g.Checkout("hotfix") },
		func() error { _, err := g.CherryPick("fix", ""); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func demoFlowchart() (diagram.Diagram, error) {
	return flowchart.New(
		[]flowchart.Node{
			{ID: "start", Label: "Start"},
			{ID: "check", Label: "Checksum matches?"},
			{ID: "load", Label: "Load diagram"},
			{ID: "warn", Label: "Record warning"},
		},
		[]flowchart.Edge{
			{SourceID: "start", TargetID: "check"},
			{SourceID: "check", TargetID: "load", Label: "yes"},
			{SourceID: "check", TargetID: "warn", Label: "no"},
			{SourceID: "warn", TargetID: "load"},
		},
	)
}

func demoPie() (diagram.Diagram, error) {
	return pie.New("Diagram types", []pie.Slice{
		{Label: "Gitgraph", Value: 5},
		{Label: "Flowchart", Value: 3},
		{Label: "ER", Value: 2},
	})
}

func demoERD() (diagram.Diagram, error) {
	return erd.New(
		[]erd.Entity{
			{Name: "CUSTOMER", Attributes: []erd.Attribute{
				{Type: "string", Name: "id", Keys: []erd.KeyKind{erd.KeyPrimary}},
				{Type: "string", Name: "email", Keys: []erd.KeyKind{erd.KeyUnique}},
			}},
			{Name: "ORDER", Attributes: []erd.Attribute{
				{Type: "string", Name: "id", Keys: []erd.KeyKind{erd.KeyPrimary}},
				{Type: "string", Name: "customer_id", Keys: []erd.KeyKind{erd.KeyForeign}},
			}},
		},
		[]erd.Relationship{{
			Entity1: "CUSTOMER", Entity2: "ORDER",
			Cardinality1: erd.OneOnly, Cardinality2: erd.ZeroOrMore,
			Identifying: true, Label: "places",
		}},
	)
}
