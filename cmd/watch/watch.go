// Package watch provides the "slidetext watch" CLI commands for file system monitoring.
package watch

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klytics/slidetext/internal/config"
	"github.com/klytics/slidetext/internal/formats/pptx"
	"github.com/klytics/slidetext/internal/logger"
	"github.com/klytics/slidetext/internal/output"
	w "github.com/klytics/slidetext/internal/watch"
)

// NewCommand creates the "watch" command with subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Monitor directories and extract presentations as they change",
		Long: `Watch directories for new or modified .pptx files and write the extracted
text of each one to <name>.slides.json.

Example:
  slidetext watch start ./decks --recursive
  slidetext watch status
  slidetext watch stop`,
	}

	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func newStartCmd() *cobra.Command {
	var (
		recursive bool
		pattern   string
		outDir    string
		debounce  int
	)

	cmd := &cobra.Command{
		Use:   "start <directory> [directory...]",
		Short: "Start watching directories for new or changed presentations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			watchCfg := w.WatchConfig{
				Directories: args,
				Recursive:   recursive,
				Pattern:     pattern,
				OutDir:      outDir,
				Debounce:    debounce,
			}

			ext := pptx.NewExtractor(cfg.ExtractOptions(), logger.WithComponent("pptx"))
			watcher, err := w.New(watchCfg, w.ExtractHandler(ext, outDir), logger.WithComponent("watch"))
			if err != nil {
				return err
			}

			configDir := w.DefaultConfigDir()
			if err := w.WritePIDFile(configDir); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not write PID file: %v\n", err)
			}
			defer w.RemovePIDFile(configDir)

			// Saved for the status and config commands.
			if err := w.SaveConfig(configDir, watchCfg); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save watch config: %v\n", err)
			}

			fmt.Printf("Watching %d directory(ies) for .pptx files\n", len(args))
			fmt.Println("Press Ctrl+C to stop")

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return watcher.Start(ctx)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Watch directories recursively")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Only process files whose name matches this glob (e.g. 'Q*.pptx')")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Write sidecars here instead of next to each file")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Debounce interval in milliseconds")

	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := w.DefaultConfigDir()
			pid, err := w.ReadPIDFile(configDir)
			if err != nil {
				return fmt.Errorf("no watcher running (PID file not found)")
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("could not find process %d: %w", pid, err)
			}

			if err := process.Signal(syscall.SIGTERM); err != nil {
				w.RemovePIDFile(configDir)
				return fmt.Errorf("could not stop watcher (PID %d): %w", pid, err)
			}

			w.RemovePIDFile(configDir)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return output.PrintJSON("watch stop", map[string]any{
					"stopped": true,
					"pid":     pid,
				})
			}

			fmt.Printf("Stopped watcher (PID %d)\n", pid)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current watcher status",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := w.DefaultConfigDir()

			pid, err := w.ReadPIDFile(configDir)
			running := err == nil

			// Check if process is actually running
			if running {
				process, err := os.FindProcess(pid)
				if err != nil {
					running = false
				} else {
					// Try sending signal 0 to check if process exists
					err = process.Signal(syscall.Signal(0))
					if err != nil {
						running = false
						w.RemovePIDFile(configDir)
					}
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")

			if !running {
				if jsonOut {
					return output.PrintJSON("watch status", map[string]any{"running": false})
				}
				fmt.Println("Watcher is not running")
				return nil
			}

			config, _ := w.LoadConfig(configDir)

			status := map[string]any{
				"running": true,
				"pid":     pid,
			}
			if config != nil {
				status["directories"] = config.Directories
				status["pattern"] = config.Pattern
				status["recursive"] = config.Recursive
			}

			if jsonOut {
				return output.PrintJSON("watch status", status)
			}

			fmt.Printf("Watcher is running (PID %d)\n", pid)
			if config != nil {
				fmt.Printf("  Directories: %s\n", strings.Join(config.Directories, ", "))
				if config.Pattern != "" {
					fmt.Printf("  Pattern:     %s\n", config.Pattern)
				}
				fmt.Printf("  Recursive:   %v\n", config.Recursive)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the current watcher configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := w.DefaultConfigDir()
			config, err := w.LoadConfig(configDir)
			if err != nil {
				return fmt.Errorf("no watcher configuration found (run 'slidetext watch start' first)")
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return output.PrintJSON("watch config", config)
			}

			fmt.Printf("Directories: %s\n", strings.Join(config.Directories, ", "))
			fmt.Printf("Recursive:   %v\n", config.Recursive)
			fmt.Printf("Debounce:    %dms\n", config.Debounce)
			if config.Pattern != "" {
				fmt.Printf("Pattern:     %s\n", config.Pattern)
			}
			outDir := config.OutDir
			if outDir == "" {
				outDir = "(next to each file)"
			}
			fmt.Printf("Output:      %s\n", outDir)
			return nil
		},
	}
}
