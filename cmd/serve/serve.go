// Package serve provides the command that runs the HTTP extraction service.
package serve

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
	"github.com/klytics/slidetext/internal/server"
)

// NewCommand returns the serve subcommand.
func NewCommand() *cobra.Command {
	var (
		addr      string
		maxUpload int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction service",
		Long: `Starts an HTTP server that accepts a multipart upload on POST /ppt (field
"ppt") and responds with a JSON array of {slide, texts} records.

Example:
  slidetext serve --addr :3000
  curl -F ppt=@deck.pptx http://localhost:3000/ppt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if maxUpload > 0 {
				cfg.Server.MaxUploadMB = maxUpload
			}
			for _, issue := range config.Validate(cfg) {
				if issue.Severity == "error" && strings.HasPrefix(issue.Key, "server.") {
					return fmt.Errorf("invalid configuration: %s: %s", issue.Key, issue.Message)
				}
			}

			ext := pptx.NewExtractor(cfg.ExtractOptions(), logger.WithComponent("pptx"))
			srv := server.New(server.Options{
				Addr:            cfg.Server.Addr,
				MaxUploadBytes:  cfg.MaxUploadBytes(),
				UploadDir:       cfg.Server.UploadDir,
				CORSOrigins:     cfg.Server.CORSOrigins,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, ext, logger.WithComponent("server"))

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
	cmd.Flags().Int64Var(&maxUpload, "max-upload-mb", 0, "Upload size limit in MiB (default from server.max_upload_mb)")

	return cmd
}
