// Package config manages application configuration from files and environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/klytics/slidetext/internal/formats/pptx"
	"github.com/klytics/slidetext/internal/logger"
)

// Config holds the application configuration.
type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
		UploadDir       string        `mapstructure:"upload_dir"`
		CORSOrigins     []string      `mapstructure:"cors_origins"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	Extract struct {
		Concurrency          int  `mapstructure:"concurrency"`
		Normalize            bool `mapstructure:"normalize"`
		DecodeEntities       bool `mapstructure:"decode_entities"`
		ConventionalDiagrams bool `mapstructure:"conventional_diagrams"`
	} `mapstructure:"extract"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		Output string `mapstructure:"output"`
	} `mapstructure:"log"`
	Output struct {
		Format string `mapstructure:"format"`
		Color  bool   `mapstructure:"color"`
	} `mapstructure:"output"`
}

// Load reads the configuration from ~/.slidetext/config.yaml and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	setDefaults()

	// SLIDETEXT_SERVER_ADDR overrides server.addr, and so on.
	viper.SetEnvPrefix("SLIDETEXT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.addr", ":3000")
	viper.SetDefault("server.max_upload_mb", 50)
	viper.SetDefault("server.upload_dir", "")
	viper.SetDefault("server.cors_origins", []string{"*"})
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("extract.concurrency", 1)
	viper.SetDefault("extract.normalize", false)
	viper.SetDefault("extract.decode_entities", false)
	viper.SetDefault("extract.conventional_diagrams", false)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stderr")
	viper.SetDefault("output.format", "text")
	viper.SetDefault("output.color", true)
}

// ExtractOptions maps the extract section onto extractor options.
func (c *Config) ExtractOptions() pptx.Options {
	return pptx.Options{
		Concurrency:          c.Extract.Concurrency,
		Normalize:            c.Extract.Normalize,
		DecodeEntities:       c.Extract.DecodeEntities,
		ConventionalDiagrams: c.Extract.ConventionalDiagrams,
	}
}

// LoggerConfig maps the log section onto a logger configuration.
func (c *Config) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig()
	if c.Log.Level != "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	if c.Log.Output != "" {
		lc.Output = c.Log.Output
	}
	lc.NoColor = !c.Output.Color
	return lc
}

// MaxUploadBytes is the upload limit of the HTTP service in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slidetext"
	}
	return filepath.Join(home, ".slidetext")
}
