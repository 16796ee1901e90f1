// Package progress renders a batch progress bar.
// All output goes to stderr to avoid polluting stdout/pipes.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Bar renders an ASCII progress bar.
type Bar struct {
	Total   int
	Current int
	Failed  int
	Label   string
	Width   int
	Enabled bool
	Out     io.Writer

	mu sync.Mutex
}

// New creates a progress bar on stderr. It is disabled when quiet is set,
// when stderr is not a TTY, or when SLIDETEXT_NO_PROGRESS=1.
func New(label string, total int, quiet bool) *Bar {
	return &Bar{
		Total:   total,
		Label:   label,
		Width:   40,
		Enabled: !quiet && shouldEnable(),
		Out:     os.Stderr,
	}
}

// Done records one finished item and redraws. A non-nil err counts as a failure.
func (b *Bar) Done(item string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Current < b.Total {
		b.Current++
	}
	if err != nil {
		b.Failed++
	}
	b.render(item)
}

// Finish prints a final completion line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.Enabled {
		return
	}
	fmt.Fprintf(b.Out, "\r\033[K✓ %s: %d done, %d failed\n", b.Label, b.Current-b.Failed, b.Failed)
}

// Pct returns the current percentage (0-100) of the bar.
func (b *Bar) Pct() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Total == 0 {
		return 0
	}
	return float64(b.Current) / float64(b.Total) * 100
}

func (b *Bar) render(status string) {
	if !b.Enabled {
		return
	}

	filled := 0
	if b.Total > 0 {
		filled = b.Current * b.Width / b.Total
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", b.Width-filled)
	fmt.Fprintf(b.Out, "\r\033[K%s [%s] %d/%d  %s", b.Label, bar, b.Current, b.Total, status)
}

func shouldEnable() bool {
	if os.Getenv("SLIDETEXT_NO_PROGRESS") == "1" {
		return false
	}
	stat, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
