package watch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/klytics/slidetext/internal/formats/pptx"
	"github.com/klytics/slidetext/internal/formats/pptx/pptxtest"
)

func newTestWatcher(t *testing.T, cfg WatchConfig, h Handler) *Watcher {
	t.Helper()
	w, err := New(cfg, h, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func writeDeck(t *testing.T, path, text string) {
	t.Helper()
	err := pptxtest.WriteFile(path, map[string]string{
		pptx.SlidePartPath(1): pptxtest.Slide(pptxtest.Paragraphs([]string{text})),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestNewWatcherDefaults(t *testing.T) {
	w := newTestWatcher(t, WatchConfig{Directories: []string{t.TempDir()}}, nil)
	defer w.watcher.Close()
	if w.Config.Debounce != 500 {
		t.Errorf("default debounce = %d, want 500", w.Config.Debounce)
	}
	if w.GetStatus().Running {
		t.Error("watcher should not report running before Start")
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"", "/tmp/deck.pptx", true},
		{"", "/tmp/DECK.PPTX", true},
		{"", "/tmp/report.docx", false},
		{"", "/tmp/~$deck.pptx", false},
		{"Q*.pptx", "/tmp/Q3 review.pptx", true},
		{"Q*.pptx", "/tmp/board.pptx", false},
	}
	for _, tt := range tests {
		w := newTestWatcher(t, WatchConfig{Pattern: tt.pattern}, nil)
		if got := w.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) with pattern %q = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
		w.watcher.Close()
	}
}

func TestProcessRecordsEvents(t *testing.T) {
	calls := 0
	w := newTestWatcher(t, WatchConfig{}, func(ctx context.Context, path string) (string, error) {
		calls++
		if path == "bad.pptx" {
			return "", errors.New("not a zip")
		}
		return "out.slides.json", nil
	})
	defer w.watcher.Close()

	ok := w.Process(context.Background(), "good.pptx", "CREATE")
	bad := w.Process(context.Background(), "bad.pptx", "WRITE")

	if ok.Status != "processed" || ok.Output != "out.slides.json" {
		t.Errorf("ok event = %+v", ok)
	}
	if bad.Status != "error" || bad.Error != "not a zip" {
		t.Errorf("bad event = %+v", bad)
	}
	if calls != 2 || len(w.GetEvents()) != 2 || w.GetStatus().EventCount != 2 {
		t.Errorf("calls = %d, events = %d", calls, len(w.GetEvents()))
	}
}

func TestSidecarPath(t *testing.T) {
	if got := SidecarPath("/decks/q3.pptx", ""); got != filepath.Join("/decks", "q3.slides.json") {
		t.Errorf("SidecarPath() = %q", got)
	}
	if got := SidecarPath("/decks/q3.pptx", "/out"); got != filepath.Join("/out", "q3.slides.json") {
		t.Errorf("SidecarPath() with outDir = %q", got)
	}
}

func TestExtractHandler(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	writeDeck(t, deck, "Watched")

	h := ExtractHandler(pptx.NewExtractor(pptx.Options{}, zerolog.Nop()), filepath.Join(dir, "out"))
	out, err := h(context.Background(), deck)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var records []pptx.SlideRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Texts[0] != "Watched" {
		t.Errorf("records = %+v", records)
	}

	if _, err := h(context.Background(), filepath.Join(dir, "missing.pptx")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatcherWritesSidecar(t *testing.T) {
	dir := t.TempDir()
	ext := pptx.NewExtractor(pptx.Options{}, zerolog.Nop())
	w := newTestWatcher(t, WatchConfig{Directories: []string{dir}, Debounce: 50}, ExtractHandler(ext, ""))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeDeck(t, filepath.Join(dir, "live.pptx"), "Live")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	sidecar := filepath.Join(dir, "live.slides.json")
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(sidecar); err == nil {
			break
		}
		time.Sleep(25 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Start() returned %v", err)
	}

	if _, err := os.Stat(sidecar); err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}
	for _, evt := range w.GetEvents() {
		if filepath.Ext(evt.Path) != ".pptx" {
			t.Errorf("unexpected event for %s", evt.Path)
		}
	}
}

func TestPIDFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	if err := WritePIDFile(dir); err != nil {
		t.Fatal(err)
	}
	pid, err := ReadPIDFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if pid != os.Getpid() {
		t.Errorf("pid = %d, want %d", pid, os.Getpid())
	}
	if err := RemovePIDFile(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPIDFile(dir); err == nil {
		t.Error("expected error after removal")
	}
}

func TestInvalidPIDFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, pidFile), []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPIDFile(dir); err == nil {
		t.Error("expected error for invalid PID file")
	}
}

func TestSaveLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := WatchConfig{
		Directories: []string{"/decks", "/shared"},
		Recursive:   true,
		Pattern:     "*.pptx",
		OutDir:      "/out",
		Debounce:    250,
	}
	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Recursive != true || loaded.Debounce != 250 || loaded.OutDir != "/out" || len(loaded.Directories) != 2 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte("directories: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
