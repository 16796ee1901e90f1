// Package batch provides the CLI command for extracting many presentations.
package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/slidetext/internal/batch"
	"github.com/klytics/slidetext/internal/config"
	"github.com/klytics/slidetext/internal/formats/pptx"
	"github.com/klytics/slidetext/internal/fs"
	"github.com/klytics/slidetext/internal/logger"
	"github.com/klytics/slidetext/internal/progress"
)

// NewCommand returns the batch subcommand.
func NewCommand() *cobra.Command {
	var (
		outDir      string
		concurrency int
		recursive   bool
	)

	cmd := &cobra.Command{
		Use:   "batch <glob|dir|file>...",
		Short: "Extract text from many presentations at once",
		Long: `Extracts every .pptx matched by the arguments. An argument may be a file,
a directory or a glob pattern.

On error, the batch records the failure and continues with the next file.
With --out-dir, each presentation's slides are written to <name>.json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			files, err := fs.Find(args, fs.FindOptions{Recursive: recursive})
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			bar := progress.New("Extracting", len(files), jsonFlag)
			runner := &batch.Runner{
				Extractor:   pptx.NewExtractor(cfg.ExtractOptions(), logger.WithComponent("pptx")),
				Concurrency: concurrency,
				OutDir:      outDir,
				Log:         logger.WithComponent("batch"),
				OnDone: func(r batch.Result) {
					var err error
					if r.Status != batch.StatusOK {
						err = fmt.Errorf("%s", r.Error)
					}
					bar.Done(filepath.Base(r.File), err)
				},
			}

			results, err := runner.Run(cmd.Context(), files)
			if err != nil {
				return err
			}
			bar.Finish()

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			red := color.New(color.FgRed)
			for _, r := range results {
				switch {
				case r.Status != batch.StatusOK:
					red.Printf("✗ %s: %s\n", r.File, r.Error)
				case r.Output != "":
					fmt.Printf("✓ %s → %s\n", r.File, r.Output)
				default:
					fmt.Printf("✓ %s (%d slides)\n", r.File, len(r.Slides))
				}
			}

			sum := batch.Summarize(results)
			fmt.Printf("\nProcessed %d files. %d succeeded, %d failed.\n", sum.Total, sum.Succeeded, sum.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Write one <name>.json per presentation to this directory")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of presentations processed in parallel")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Search directories recursively")

	return cmd
}
