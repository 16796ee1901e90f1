// Package watch monitors directories for new or modified .pptx packages and
// writes their extracted text to a sidecar JSON file next to each one.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/klytics/slidetext/internal/fs"
)

// SidecarSuffix replaces ".pptx" in the name of the file written for each package.
const SidecarSuffix = ".slides.json"

// WatchConfig holds the complete watcher configuration.
type WatchConfig struct {
	Directories []string `yaml:"directories" json:"directories"`
	Recursive   bool     `yaml:"recursive" json:"recursive"`
	// Pattern optionally restricts which base names are processed (e.g. "Q*.pptx").
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	// OutDir receives sidecars; empty means next to the source file.
	OutDir   string `yaml:"out_dir,omitempty" json:"outDir,omitempty"`
	Debounce int    `yaml:"debounce_ms" json:"debounceMs"` // Milliseconds to wait before processing
}

// Event represents a file event that was detected and processed.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Output    string    `json:"output,omitempty"`
	Status    string    `json:"status"` // "processed", "error"
	Error     string    `json:"error,omitempty"`
}

// Handler extracts path and returns the sidecar it wrote.
type Handler func(ctx context.Context, path string) (string, error)

// Watcher monitors directories for file changes and runs the Handler.
type Watcher struct {
	Config  WatchConfig
	Logger  zerolog.Logger
	Handler Handler

	mu        sync.Mutex
	events    []Event
	startedAt time.Time
	watcher   *fsnotify.Watcher
	debounce  map[string]*time.Timer
}

// Status represents the current watcher status.
type Status struct {
	Running     bool     `json:"running"`
	Directories []string `json:"directories"`
	EventCount  int      `json:"eventCount"`
	StartedAt   string   `json:"startedAt,omitempty"`
}

// New creates a new Watcher with the given configuration.
func New(config WatchConfig, handler Handler, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 500
	}

	return &Watcher{
		Config:   config,
		Logger:   log,
		Handler:  handler,
		watcher:  fsw,
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the configured directories. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.Config.Directories {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("could not resolve %s: %w", dir, err)
		}

		if w.Config.Recursive {
			if err := w.addRecursive(absDir); err != nil {
				return err
			}
		} else if err := w.watcher.Add(absDir); err != nil {
			return fmt.Errorf("could not watch %s: %w", absDir, err)
		}
	}

	w.mu.Lock()
	w.startedAt = time.Now()
	w.mu.Unlock()
	w.Logger.Info().Strs("directories", w.Config.Directories).Bool("recursive", w.Config.Recursive).Msg("watching")

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info().Msg("stopping watcher")
			w.stopTimers()
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	path := event.Name
	if w.Config.Recursive && event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				w.Logger.Warn().Err(err).Str("dir", path).Msg("could not watch new directory")
			}
			return
		}
	}
	if !w.Matches(path) {
		return
	}

	// Office writes a package in several steps; wait for it to settle.
	w.mu.Lock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(time.Duration(w.Config.Debounce)*time.Millisecond, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()
		w.Process(ctx, path, event.Op.String())
	})
	w.mu.Unlock()
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, path)
	}
}

// Matches reports whether path is a presentation the watcher should process.
func (w *Watcher) Matches(path string) bool {
	if !fs.IsPresentation(path) {
		return false
	}
	if w.Config.Pattern != "" {
		matched, _ := filepath.Match(w.Config.Pattern, filepath.Base(path))
		return matched
	}
	return true
}

// Process runs the handler for path and records the outcome.
func (w *Watcher) Process(ctx context.Context, path, operation string) Event {
	evt := Event{Time: time.Now(), Path: path, Operation: operation, Status: "processed"}

	if w.Handler != nil {
		out, err := w.Handler(ctx, path)
		if err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Error().Err(err).Str("file", path).Msg("extraction failed")
		} else {
			evt.Output = out
			w.Logger.Info().Str("file", path).Str("output", out).Msg("extracted")
		}
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
	return evt
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := Status{
		Running:     !w.startedAt.IsZero(),
		Directories: w.Config.Directories,
		EventCount:  len(w.events),
	}
	if !w.startedAt.IsZero() {
		st.StartedAt = w.startedAt.Format(time.RFC3339)
	}
	return st
}

// GetEvents returns all recorded events.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}

// SidecarPath returns where the text of path is written. An empty outDir
// places the sidecar next to path.
func SidecarPath(path, outDir string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + SidecarSuffix
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), name)
	}
	return filepath.Join(outDir, name)
}

const pidFile = "watch.pid"

// WritePIDFile writes the current process ID to the PID file in the given directory.
func WritePIDFile(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, pidFile), []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

// ReadPIDFile reads the PID from the PID file.
func ReadPIDFile(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, pidFile))
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

// RemovePIDFile removes the PID file.
func RemovePIDFile(dir string) error {
	return os.Remove(filepath.Join(dir, pidFile))
}

const configFile = "watch.yaml"

// SaveConfig writes the watcher config to watch.yaml in dir.
func SaveConfig(dir string, config WatchConfig) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, configFile), data, 0644)
}

// LoadConfig reads the watcher config from watch.yaml in dir.
func LoadConfig(dir string) (*WatchConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		return nil, err
	}
	var config WatchConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid watch config: %w", err)
	}
	return &config, nil
}

// DefaultConfigDir returns the default config directory for the watcher.
func DefaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".slidetext")
}
