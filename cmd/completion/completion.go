// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// installHints is the comment printed above each generated script.
var installHints = map[string]string{
	"bash":       "slidetext completion bash > /etc/bash_completion.d/slidetext",
	"zsh":        "slidetext completion zsh > ~/.zsh/completions/_slidetext",
	"fish":       "slidetext completion fish > ~/.config/fish/completions/slidetext.fish",
	"powershell": "slidetext completion powershell >> $PROFILE",
}

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for slidetext.

Install instructions:
  Bash:       slidetext completion bash > /etc/bash_completion.d/slidetext
              echo 'source <(slidetext completion bash)' >> ~/.bashrc
  Zsh:        slidetext completion zsh > ~/.zsh/completions/_slidetext
  Fish:       slidetext completion fish > ~/.config/fish/completions/slidetext.fish
  PowerShell: slidetext completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Generate(cmd.OutOrStdout(), rootCmd, args[0])
		},
	}
	return cmd
}

// Generate writes the completion script for shell to w.
func Generate(w io.Writer, rootCmd *cobra.Command, shell string) error {
	hint, ok := installHints[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", shell)
	}
	fmt.Fprintf(w, "# slidetext %s completion\n# Install: %s\n\n", shell, hint)

	switch shell {
	case "bash":
		return rootCmd.GenBashCompletion(w)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	default:
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	}
}
