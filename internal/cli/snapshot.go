package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/diagrams/pkg/errors"
	"github.com/matzehuels/diagrams/pkg/store"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record envelopes and diff against earlier snapshots",
		Long: `Snapshots are stored by content id in a local directory. Each named history
lists its snapshots in recording order; recording unchanged content is a no-op.`,
	}

	cmd.AddCommand(c.snapshotRecordCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotDiffCommand())
	cmd.AddCommand(c.snapshotPathCommand())
	cmd.AddCommand(c.snapshotClearCommand())

	return cmd
}

// storeDir returns the configured snapshot directory.
func (c *CLI) storeDir() (string, error) {
	if c.Config.SnapshotDir != "" {
		return c.Config.SnapshotDir, nil
	}
	return snapshotDir()
}

func (c *CLI) openHistory(name string) (*store.History, error) {
	dir, err := c.storeDir()
	if err != nil {
		return nil, fmt.Errorf("get snapshot dir: %w", err)
	}
	s, err := store.NewFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return store.NewHistory(s, name, c.decoderOptions()...)
}

// historyName defaults to the file name without its extension.
func historyName(name, path string) string {
	if name != "" {
		return name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (c *CLI) snapshotRecordCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "record <file>",
		Short: "Record an envelope in a history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.readDiagram(cmd, args[0])
			if err != nil {
				return err
			}
			h, err := c.openHistory(historyName(name, args[0]))
			if err != nil {
				return err
			}
			snap, err := h.Record(contextOf(cmd), d)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSuccess(w, "Recorded %s in %s", snap.ID, h.Name())
			printDetail(w, "%s version %s", snap.Type, snap.Version)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "history name (default: file name)")
	return cmd
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <name>",
		Short: "List the snapshots of a history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.openHistory(args[0])
			if err != nil {
				return err
			}
			entries, err := h.List(contextOf(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if c.Config.Output != OutputText {
				return writeValue(w, c.Config.Output, entries)
			}
			if len(entries) == 0 {
				printInfo(w, "History %s is empty", h.Name())
				return nil
			}
			t := newTable("#", "Snapshot", "Type", "Version", "Checksum")
			for i, e := range entries {
				t.Row(fmt.Sprint(i+1), e.ID, e.Type, e.Version.String(), shortDigest(e.Checksum))
			}
			fmt.Fprintln(w, t.Render())
			return nil
		},
	}
}

func (c *CLI) snapshotDiffCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "diff <file>",
		Short: "Diff an envelope against the latest snapshot of its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.readDiagram(cmd, args[0])
			if err != nil {
				return err
			}
			h, err := c.openHistory(historyName(name, args[0]))
			if err != nil {
				return err
			}
			prev, snap, err := h.Latest(contextOf(cmd))
			if err != nil {
				if errs.Is(err, errs.ErrCodeNotFound) {
					return fmt.Errorf("nothing recorded in %s yet; run 'diagrams snapshot record' first", h.Name())
				}
				return err
			}
			if prev.Kind() != d.Kind() {
				return errs.New(errs.ErrCodeTypeMismatch, "history %s holds %s", h.Name(), snap.Type)
			}
			loggerFromContext(cmd.Context()).Debug("diffing against snapshot", "id", snap.ID)
			return c.printDiff(cmd.OutOrStdout(), prev, d)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "history name (default: file name)")
	return cmd
}

func (c *CLI) snapshotPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the snapshot directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.storeDir()
			if err != nil {
				return fmt.Errorf("get snapshot dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

func (c *CLI) snapshotClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all snapshots and histories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.storeDir()
			if err != nil {
				return fmt.Errorf("get snapshot dir: %w", err)
			}
			w := cmd.OutOrStdout()

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(w, "No snapshots stored")
				return nil
			}

			count := 0
			err = filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
				if err != nil || entry.IsDir() {
					return nil
				}
				if err := os.Remove(path); err == nil {
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}
			if err := os.RemoveAll(dir); err != nil {
				return err
			}

			printSuccess(w, "Cleared %d stored entries", count)
			printDetail(w, "Directory: %s", dir)
			return nil
		},
	}
}
