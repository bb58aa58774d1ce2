package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stickerpack.

To load completions:

Bash:
  $ source <(stickerpack completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ stickerpack completion bash > /etc/bash_completion.d/stickerpack
  # macOS:
  $ stickerpack completion bash > $(brew --prefix)/etc/bash_completion.d/stickerpack

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ stickerpack completion zsh > "${fpath[1]}/_stickerpack"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ stickerpack completion fish | source

  # To load completions for each session, execute once:
  $ stickerpack completion fish > ~/.config/fish/completions/stickerpack.fish

PowerShell:
  PS> stickerpack completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> stickerpack completion powershell > stickerpack.ps1
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

	return cmd
}
