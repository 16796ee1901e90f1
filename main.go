package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/klytics/slidetext/cmd"
	"github.com/klytics/slidetext/internal/config"
	"github.com/klytics/slidetext/internal/logger"
	"github.com/klytics/slidetext/internal/output"
)

func main() {
	// A .env next to the binary may carry SLIDETEXT_* overrides.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load configuration: %s\n", err)
		os.Exit(output.ExitSystemError)
	}
	if err := logger.Setup(cfg.LoggerConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not set up logging: %s\n", err)
		os.Exit(output.ExitSystemError)
	}

	log := logger.Get()
	log.Debug().Str("config", config.ConfigPath()).Str("level", cfg.Log.Level).Msg("configuration loaded")

	cmd.Execute(context.Background())
}
