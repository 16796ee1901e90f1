package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupInvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	if err := Setup(cfg); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestSetupJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidetext.log")
	t.Cleanup(func() {
		_ = Setup(DefaultConfig())
	})

	err := Setup(Config{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatal(err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("global level = %s", zerolog.GlobalLevel())
	}

	log := WithComponent("extract")
	log.Info().Int("slides", 3).Msg("done")
	global := Get()
	global.Debug().Msg("ready")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], `"message":"ready"`) {
		t.Fatalf("expected the global logger to write to the same file, got %q", data)
	}
	line := lines[0]
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["component"] != "extract" || entry["message"] != "done" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["slides"] != float64(3) {
		t.Errorf("slides = %v", entry["slides"])
	}
}
