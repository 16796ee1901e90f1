// Package cmd contains all CLI commands for the slidetext binary.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/klytics/slidetext/cmd/batch"
	"github.com/klytics/slidetext/cmd/completion"
	cmdconfig "github.com/klytics/slidetext/cmd/config"
	"github.com/klytics/slidetext/cmd/pptx"
	"github.com/klytics/slidetext/cmd/serve"
	"github.com/klytics/slidetext/cmd/shell"
	"github.com/klytics/slidetext/cmd/version"
	cmdwatch "github.com/klytics/slidetext/cmd/watch"
	"github.com/klytics/slidetext/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	format     string
	noColor    bool
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slidetext",
		Short: "Extract the text of PowerPoint presentations",
		Long: `slidetext — slide text out of .pptx packages.

Extracts the visible text of every slide in slide order, including text held
in SmartArt diagrams and charts, from the terminal or over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "Output format: text | json | yaml | markdown (default from output.format)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(pptx.NewCommand())
	rootCmd.AddCommand(batch.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(shell.NewCommand())
	rootCmd.AddCommand(serve.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute(ctx context.Context) {
	rootCmd := NewRootCommand()
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(output.ExitOK)
	}

	if jsonOutput && cmd != nil {
		_ = output.PrintJSONError(cmd.CommandPath(), err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(output.ExitCode(err))
}
