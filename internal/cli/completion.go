package cli

import "github.com/spf13/cobra"

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wsgraph.

To load completions:

Bash:
  $ source <(wsgraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ wsgraph completion bash > /etc/bash_completion.d/wsgraph
  # macOS:
  $ wsgraph completion bash > $(brew --prefix)/etc/bash_completion.d/wsgraph

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ wsgraph completion zsh > "${fpath[1]}/_wsgraph"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ wsgraph completion fish | source

  # To load completions for each session, execute once:
  $ wsgraph completion fish > ~/.config/fish/completions/wsgraph.fish

PowerShell:
  PS> wsgraph completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> wsgraph completion powershell > wsgraph.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(c.out)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.out)
			}
			return nil
		},
	}

	return cmd
}
