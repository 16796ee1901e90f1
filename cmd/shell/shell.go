// Package shell provides the "slidetext shell" interactive REPL command.
package shell

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klytics/slidetext/internal/config"
	"github.com/klytics/slidetext/internal/formats/pptx"
	"github.com/klytics/slidetext/internal/logger"
	shellpkg "github.com/klytics/slidetext/internal/shell"
)

// NewCommand creates the "shell" command.
func NewCommand() *cobra.Command {
	var evalCmd string

	cmd := &cobra.Command{
		Use:   "shell [file.pptx]",
		Short: "Browse a presentation's text interactively",
		Long: `Start an interactive REPL over the extracted text of a presentation.

The file is extracted once; list, slide, find and stats then run against the
result without re-reading the package. Tab completion works for commands and
slide numbers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ext := pptx.NewExtractor(cfg.ExtractOptions(), logger.WithComponent("shell"))
			load := func(ctx context.Context, path string) (*pptx.Presentation, error) {
				return ext.ReadFile(ctx, path)
			}

			session, err := shellpkg.NewSession(load)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if err := session.Open(cmd.Context(), args[0]); err != nil {
					return err
				}
			}

			if evalCmd != "" {
				out, err := session.Eval(cmd.Context(), evalCmd)
				if err != nil {
					return err
				}
				fmt.Print(out)
				return nil
			}
			return session.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&evalCmd, "eval", "", "Run a single command and exit")
	return cmd
}
