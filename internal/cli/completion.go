package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// newCompletionCmd creates the completion command for generating shell
// completion scripts.
func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tracewire.

To load completions:

Bash:
  $ source <(tracewire completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tracewire completion bash > /etc/bash_completion.d/tracewire
  # macOS:
  $ tracewire completion bash > $(brew --prefix)/etc/bash_completion.d/tracewire

Zsh:
  $ tracewire completion zsh > "${fpath[1]}/_tracewire"

Fish:
  $ tracewire completion fish > ~/.config/fish/completions/tracewire.fish

PowerShell:
  PS> tracewire completion powershell > tracewire.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
