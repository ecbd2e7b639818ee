package cli

import (
	"github.com/spf13/cobra"
)

// envelopeExts are the file extensions offered for envelope arguments.
var envelopeExts = []string{"json", "yaml", "yml"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for diagrams.

Envelope arguments complete to .json, .yaml and .yml files, and --output
completes to the supported formats.

Bash:
  $ source <(diagrams completion bash)

Zsh:
  $ diagrams completion zsh > "${fpath[1]}/_diagrams"

Fish:
  $ diagrams completion fish | source

PowerShell:
  PS> diagrams completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// registerCompletions wires dynamic completions into the command tree. It
// must run after every subcommand has been added to root.
func registerCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("output", completeOutput)

	envelopeCommands := map[string]bool{
		"inspect":         true,
		"verify":          true,
		"diff":            true,
		"snapshot record": true,
		"snapshot diff":   true,
	}
	var walk func(cmd *cobra.Command, prefix string)
	walk = func(cmd *cobra.Command, prefix string) {
		for _, sub := range cmd.Commands() {
			name := prefix + sub.Name()
			if envelopeCommands[name] {
				sub.ValidArgsFunction = completeEnvelopeFiles
			}
			walk(sub, name+" ")
		}
	}
	walk(root, "")
}

func completeOutput(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{OutputText, OutputJSON, OutputYAML}, cobra.ShellCompDirectiveNoFileComp
}

func completeEnvelopeFiles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return envelopeExts, cobra.ShellCompDirectiveFilterFileExt
}
