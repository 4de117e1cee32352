package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion scripts",
	Long: `Generate a shell completion script for pawminder.

Load it for the current session:

  bash:  source <(pawminder completion bash)
  zsh:   source <(pawminder completion zsh)
  fish:  pawminder completion fish | source

Or install it permanently:

  bash:  pawminder completion bash > /etc/bash_completion.d/pawminder
  zsh:   pawminder completion zsh > "${fpath[1]}/_pawminder"
  fish:  pawminder completion fish > ~/.config/fish/completions/pawminder.fish

Zsh needs compinit enabled; add "autoload -U compinit; compinit" to
your ~/.zshrc if completions do not appear.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
