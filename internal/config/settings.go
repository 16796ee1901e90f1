package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

var outputFormats = map[string]bool{"text": true, "json": true, "yaml": true, "markdown": true}

// Validate checks config values and returns a list of issues.
func Validate(cfg *Config) []ConfigIssue {
	var issues []ConfigIssue

	if cfg.Server.Addr == "" {
		issues = append(issues, ConfigIssue{
			Key:      "server.addr",
			Severity: "error",
			Message:  "server address is empty — slidetext serve cannot listen",
			Fix:      "slidetext config set server.addr :3000",
		})
	}
	if cfg.Server.MaxUploadMB <= 0 {
		issues = append(issues, ConfigIssue{
			Key:      "server.max_upload_mb",
			Severity: "error",
			Message:  fmt.Sprintf("upload limit must be positive, got %d", cfg.Server.MaxUploadMB),
			Fix:      "slidetext config set server.max_upload_mb 50",
		})
	}
	if dir := cfg.Server.UploadDir; dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			issues = append(issues, ConfigIssue{
				Key:      "server.upload_dir",
				Severity: "warning",
				Message:  fmt.Sprintf("upload directory %s does not exist — uploads will fail", dir),
				Fix:      fmt.Sprintf("mkdir -p %s", dir),
			})
		}
	}
	if cfg.Extract.Concurrency < 1 {
		issues = append(issues, ConfigIssue{
			Key:      "extract.concurrency",
			Severity: "warning",
			Message:  fmt.Sprintf("concurrency %d is below 1 — slides will be processed one at a time", cfg.Extract.Concurrency),
		})
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "log.level",
			Severity: "error",
			Message:  fmt.Sprintf("unknown log level %q", cfg.Log.Level),
			Fix:      "slidetext config set log.level info",
		})
	}
	if !outputFormats[cfg.Output.Format] {
		issues = append(issues, ConfigIssue{
			Key:      "output.format",
			Severity: "error",
			Message:  fmt.Sprintf("unknown output format %q (supported: text, json, yaml, markdown)", cfg.Output.Format),
			Fix:      "slidetext config set output.format text",
		})
	}

	return issues
}

// Set sets a config value and saves to disk.
func Set(key, value string) error {
	viper.Set(key, value)
	return SaveConfig()
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

// SaveConfig writes the current config to ~/.slidetext/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

// ResetConfig deletes the config file and restores defaults.
func ResetConfig() error {
	if err := os.Remove(ConfigPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	viper.Reset()
	setDefaults()
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the given configuration.
func ShowConfig(cfg *Config) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Config: %s\n\n", ConfigPath())

	sb.WriteString("Server\n")
	fmt.Fprintf(&sb, "  addr:            %s\n", cfg.Server.Addr)
	fmt.Fprintf(&sb, "  max_upload_mb:   %d\n", cfg.Server.MaxUploadMB)
	if cfg.Server.UploadDir != "" {
		fmt.Fprintf(&sb, "  upload_dir:      %s\n", cfg.Server.UploadDir)
	}
	fmt.Fprintf(&sb, "  cors_origins:    %s\n", strings.Join(cfg.Server.CORSOrigins, ", "))
	sb.WriteString("\n")

	sb.WriteString("Extract\n")
	fmt.Fprintf(&sb, "  concurrency:     %d\n", cfg.Extract.Concurrency)
	fmt.Fprintf(&sb, "  normalize:       %v\n", cfg.Extract.Normalize)
	fmt.Fprintf(&sb, "  decode_entities: %v\n", cfg.Extract.DecodeEntities)
	fmt.Fprintf(&sb, "  conventional:    %v\n", cfg.Extract.ConventionalDiagrams)
	sb.WriteString("\n")

	sb.WriteString("Log\n")
	fmt.Fprintf(&sb, "  level:           %s\n", cfg.Log.Level)
	fmt.Fprintf(&sb, "  format:          %s\n", cfg.Log.Format)
	sb.WriteString("\n")

	return sb.String()
}

// ToEnv maps the configuration onto the SLIDETEXT_* environment variables
// that override it.
func ToEnv(cfg *Config) map[string]string {
	return map[string]string{
		"SLIDETEXT_SERVER_ADDR":                   cfg.Server.Addr,
		"SLIDETEXT_SERVER_MAX_UPLOAD_MB":          fmt.Sprintf("%d", cfg.Server.MaxUploadMB),
		"SLIDETEXT_SERVER_UPLOAD_DIR":             cfg.Server.UploadDir,
		"SLIDETEXT_EXTRACT_CONCURRENCY":           fmt.Sprintf("%d", cfg.Extract.Concurrency),
		"SLIDETEXT_EXTRACT_NORMALIZE":             fmt.Sprintf("%v", cfg.Extract.Normalize),
		"SLIDETEXT_EXTRACT_DECODE_ENTITIES":       fmt.Sprintf("%v", cfg.Extract.DecodeEntities),
		"SLIDETEXT_EXTRACT_CONVENTIONAL_DIAGRAMS": fmt.Sprintf("%v", cfg.Extract.ConventionalDiagrams),
		"SLIDETEXT_LOG_LEVEL":                     cfg.Log.Level,
		"SLIDETEXT_LOG_FORMAT":                    cfg.Log.Format,
		"SLIDETEXT_OUTPUT_FORMAT":                 cfg.Output.Format,
	}
}
