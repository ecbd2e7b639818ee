package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/diagrams/pkg/codec"
	"github.com/matzehuels/diagrams/pkg/diagram"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode an envelope and summarize it",
		Long: `Decode an envelope and print its type, version, checksum, element counts
and any warnings raised while loading it.

With --output json or yaml the envelope is re-encoded instead, carrying a
checksum recomputed from its content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.readDiagram(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if c.Config.Output != OutputText {
				return c.writeDiagram(w, d)
			}
			printSummary(w, d)
			return nil
		},
	}
}

func printSummary(w io.Writer, d diagram.Diagram) {
	fmt.Fprintln(w, StyleTitle.Render(d.Kind()))
	printKeyValue(w, "type", diagram.TypeName(d.Kind()))
	printKeyValue(w, "version", d.Version().String())
	printKeyValue(w, "checksum", d.Checksum())

	elements := d.IdentifiableElements()
	tags := make([]string, 0, len(elements))
	for tag := range elements {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	for _, tag := range tags {
		printKeyValue(w, tag, StyleNumber.Render(fmt.Sprint(len(elements[tag]))))
	}

	for _, warn := range d.Warnings() {
		printWarning(w, "%s", warn)
	}
}

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check that envelopes decode and their checksums match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Config.StrictChecksum = true
			w := cmd.OutOrStdout()

			failed := 0
			for _, path := range args {
				d, err := c.readDiagram(cmd, path)
				if err != nil {
					failed++
					printError(w, "%s: %s", path, errs.UserMessage(err))
					if code := errs.GetCode(err); code != "" {
						printDetail(w, "%s", code)
					}
					continue
				}
				printSuccess(w, "%s %s", path, StyleDim.Render(diagram.TypeName(d.Kind())+" "+shortDigest(d.Checksum())))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d envelopes failed verification", failed, len(args))
			}
			return nil
		},
	}
}

// diffCommand creates the diff command.
func (c *CLI) diffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two envelopes element by element",
		Long: `Compare two envelopes of the same diagram type. Elements are paired by
their identifying field (id, name, title or label) and reported as added,
removed or modified.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldD, err := c.readDiagram(cmd, args[0])
			if err != nil {
				return err
			}
			newD, err := c.readDiagram(cmd, args[1])
			if err != nil {
				return err
			}
			if oldD.Kind() != newD.Kind() {
				return errs.New(errs.ErrCodeTypeMismatch, "cannot diff %s against %s",
					diagram.TypeName(oldD.Kind()), diagram.TypeName(newD.Kind()))
			}
			return c.printDiff(cmd.OutOrStdout(), oldD, newD)
		},
	}
}

func (c *CLI) printDiff(w io.Writer, oldD, newD diagram.Diagram) error {
	result := diagram.Diff(oldD, newD)
	if c.Config.Output != OutputText {
		return writeValue(w, c.Config.Output, result)
	}
	switch {
	case diagram.Equal(oldD, newD):
		printSuccess(w, "identical %s", StyleDim.Render(shortDigest(newD.Checksum())))
	case result.Empty():
		printInfo(w, "content differs outside identifiable elements")
	default:
		fmt.Fprintln(w, diffTable(result))
		printInfo(w, "%s", diffSummary(result))
	}
	return nil
}

// typesCommand creates the types command.
func (c *CLI) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the diagram types the decoder knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := codec.DefaultRegistry().Kinds()
			w := cmd.OutOrStdout()
			if c.Config.Output != OutputText {
				type entry struct {
					Kind string `json:"kind"`
					Type string `json:"type"`
				}
				entries := make([]entry, len(kinds))
				for i, k := range kinds {
					entries[i] = entry{Kind: k, Type: diagram.TypeName(k)}
				}
				return writeValue(w, c.Config.Output, entries)
			}
			t := newTable("Kind", "Type")
			for _, k := range kinds {
				t.Row(k, diagram.TypeName(k))
			}
			fmt.Fprintln(w, t.Render())
			return nil
		},
	}
}

// writeValue prints v as indented JSON, or as YAML converted from its JSON
// form so both formats share field names.
func writeValue(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format != OutputYAML {
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}
