package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/klytics/slidetext/internal/formats/pptx"
)

func testPresentation() *pptx.Presentation {
	return &pptx.Presentation{Slides: []pptx.SlideRecord{
		{Slide: 1, Texts: []string{"Quarterly Review", "Agenda"}},
		{Slide: 2, Texts: []string{}},
		{Slide: 10, Texts: []string{"Q1 Revenue", "Next steps"}},
	}}
}

func mockLoader(pres *pptx.Presentation) Loader {
	return func(ctx context.Context, path string) (*pptx.Presentation, error) {
		if path == "missing.pptx" {
			return nil, errors.New("file not found: missing.pptx")
		}
		return pres, nil
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	s, err := NewSession(mockLoader(testPresentation()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t)
	if err := s.Open(context.Background(), "deck.pptx"); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t)
	if len(s.CommandHistory) != 0 {
		t.Errorf("expected empty history, got %d entries", len(s.CommandHistory))
	}
	if !strings.HasSuffix(s.HistoryFile, "shell_history") {
		t.Errorf("unexpected history file %q", s.HistoryFile)
	}
	if s.Presentation != nil {
		t.Error("expected no presentation before open")
	}
}

func TestEvalRequiresPresentation(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Eval(context.Background(), "list"); err == nil {
		t.Error("expected error without a loaded presentation")
	}
}

func TestEvalOpen(t *testing.T) {
	s := newTestSession(t)
	out, err := s.Eval(context.Background(), "open deck.pptx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "3 slides") || s.File != "deck.pptx" {
		t.Errorf("open output = %q, file = %q", out, s.File)
	}

	if _, err := s.Eval(context.Background(), "open missing.pptx"); err == nil {
		t.Error("expected error for missing file")
	}
	if s.File != "deck.pptx" {
		t.Error("failed open should keep the previous presentation")
	}
}

func TestEvalCommands(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "list", want: []string{"1  Quarterly Review", "(no text)", "10  Q1 Revenue"}},
		{line: "slide 10", want: []string{"Slide 10", "  Q1 Revenue\n", "  Next steps\n"}},
		{line: "slide 3", wantErr: true},
		{line: "slide x", wantErr: true},
		{line: "slide", wantErr: true},
		{line: "find revenue", want: []string{"slide 10, line 1: Q1 Revenue"}},
		{line: "find nothing here", want: []string{"No lines match"}},
		{line: "find", wantErr: true},
		{line: "stats", want: []string{"Slides: 3 (1 without text)", "Lines: 4"}},
		{line: "help", want: []string{"slide <n>"}},
		{line: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := loadedSession(t)
			out, err := s.Eval(context.Background(), tt.line)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got output %q", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}

func TestEvalEmpty(t *testing.T) {
	s := loadedSession(t)
	out, err := s.Eval(context.Background(), "   ")
	if err != nil || out != "" {
		t.Errorf("Eval(blank) = %q, %v", out, err)
	}
	if len(s.CommandHistory) != 0 {
		t.Error("blank lines should not enter history")
	}
}

func TestHistoryGrows(t *testing.T) {
	s := loadedSession(t)
	s.Eval(context.Background(), "list")
	s.Eval(context.Background(), "stats")
	out, _ := s.Eval(context.Background(), "history")

	if len(s.CommandHistory) != 3 {
		t.Errorf("history length = %d, want 3", len(s.CommandHistory))
	}
	if !strings.Contains(out, "1  list") || !strings.Contains(out, "3  history") {
		t.Errorf("history output = %q", out)
	}
}

func TestLoop(t *testing.T) {
	s := loadedSession(t)
	lines := []string{"stats", "", "slide 99", "exit", "list"}
	next := func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		l := lines[0]
		lines = lines[1:]
		return l, nil
	}

	var out bytes.Buffer
	if err := s.loop(context.Background(), next, &out); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, w := range []string{"Loaded deck.pptx", "Slides: 3", "Error: slide 99 not found", "Session ended. 2 commands"} {
		if !strings.Contains(got, w) {
			t.Errorf("loop output missing %q:\n%s", w, got)
		}
	}
	if len(lines) != 1 {
		t.Error("loop should stop at exit")
	}
}

func TestComplete(t *testing.T) {
	s := loadedSession(t)
	tests := []struct {
		input string
		want  []string
	}{
		{"st", []string{"stats"}},
		{"s", []string{"slide", "stats"}},
		{"slide ", []string{"1", "2", "10"}},
		{"slide 1", []string{"1", "10"}},
		{"zzz ", nil},
	}
	for _, tt := range tests {
		if got := s.Complete(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Complete(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if len(s.Complete("")) != len(s.KnownCommands) {
		t.Error("expected all commands for empty input")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
		{5 * time.Minute, "5m 0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.input); got != tt.expected {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo world", 5); got != "héll…" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
}
