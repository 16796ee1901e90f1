// Package shell provides an interactive REPL for browsing extracted slide text.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/klytics/slidetext/internal/formats/pptx"
)

// Loader extracts the presentation at path.
type Loader func(ctx context.Context, path string) (*pptx.Presentation, error)

// errExit is returned by Eval for exit and quit.
var errExit = errors.New("exit")

// Session holds the state of one shell session.
type Session struct {
	File           string
	Presentation   *pptx.Presentation
	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time

	// KnownCommands is the list of commands for completion.
	KnownCommands []string

	load Loader
}

// NewSession creates a session that loads presentations with load.
func NewSession(load Loader) (*Session, error) {
	home, _ := os.UserHomeDir()
	histFile := filepath.Join(home, ".slidetext", "shell_history")

	if err := os.MkdirAll(filepath.Dir(histFile), 0755); err != nil {
		return nil, fmt.Errorf("could not create history directory: %w", err)
	}

	return &Session{
		HistoryFile: histFile,
		StartTime:   time.Now(),
		KnownCommands: []string{
			"open", "list", "slide", "find", "stats",
			"help", "history", "exit", "quit",
		},
		load: load,
	}, nil
}

// Open loads path and makes it the current presentation.
func (s *Session) Open(ctx context.Context, path string) error {
	pres, err := s.load(ctx, path)
	if err != nil {
		return err
	}
	s.File = path
	s.Presentation = pres
	return nil
}

// Run starts the REPL loop on the terminal. Blocks until 'exit' or Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "slidetext> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(s.buildCompleter()...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	return s.loop(ctx, rl.Readline, rl.Stdout())
}

func (s *Session) loop(ctx context.Context, readLine func() (string, error), out io.Writer) error {
	fmt.Fprintln(out, "slidetext — Interactive Shell")
	if s.File != "" {
		fmt.Fprintf(out, "Loaded %s (%d slides)\n", s.File, len(s.Presentation.Slides))
	}
	fmt.Fprintln(out, "Type 'help' for commands, 'exit' to quit.")
	fmt.Fprintln(out)

	for {
		line, err := readLine()
		if err != nil { // io.EOF or interrupt
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		result, err := s.Eval(ctx, line)
		if errors.Is(err, errExit) {
			fmt.Fprintf(out, "\nSession ended. %d commands run in %s.\n",
				len(s.CommandHistory)-1, formatDuration(time.Since(s.StartTime)))
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %s\n", err)
			continue
		}
		if result != "" {
			fmt.Fprint(out, result)
			if !strings.HasSuffix(result, "\n") {
				fmt.Fprintln(out)
			}
		}
	}
}

// Eval runs a single shell command and returns its output.
func (s *Session) Eval(ctx context.Context, line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", nil
	}
	s.CommandHistory = append(s.CommandHistory, line)
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), args[0]))

	switch args[0] {
	case "exit", "quit":
		return "", errExit
	case "help":
		return helpText, nil
	case "history":
		var b strings.Builder
		for i, cmd := range s.CommandHistory {
			fmt.Fprintf(&b, "  %d  %s\n", i+1, cmd)
		}
		return b.String(), nil
	case "open":
		if rest == "" {
			return "", fmt.Errorf("usage: open <file.pptx>")
		}
		if err := s.Open(ctx, rest); err != nil {
			return "", err
		}
		return fmt.Sprintf("Loaded %s (%d slides)\n", rest, len(s.Presentation.Slides)), nil
	}

	if s.Presentation == nil {
		return "", fmt.Errorf("no presentation loaded — use 'open <file.pptx>'")
	}

	switch args[0] {
	case "list", "ls":
		return s.list(), nil
	case "slide":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: slide <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("invalid slide number %q", args[1])
		}
		rec, ok := s.Presentation.Slide(n)
		if !ok {
			return "", fmt.Errorf("slide %d not found", n)
		}
		return formatSlide(rec), nil
	case "find":
		if rest == "" {
			return "", fmt.Errorf("usage: find <text>")
		}
		matches := s.Presentation.Find(rest)
		if len(matches) == 0 {
			return fmt.Sprintf("No lines match %q\n", rest), nil
		}
		var b strings.Builder
		for _, m := range matches {
			fmt.Fprintf(&b, "  slide %d, line %d: %s\n", m.Slide, m.Line, m.Text)
		}
		return b.String(), nil
	case "stats":
		st := s.Presentation.Stats()
		return fmt.Sprintf("Slides: %d (%d without text)\nLines: %d\nCharacters: %d\n",
			st.Slides, st.EmptySlides, st.Lines, st.Characters), nil
	}

	return "", fmt.Errorf("unknown command %q — type 'help'", args[0])
}

func (s *Session) list() string {
	var b strings.Builder
	for _, rec := range s.Presentation.Slides {
		first := "(no text)"
		if len(rec.Texts) > 0 {
			first = truncate(rec.Texts[0], 60)
		}
		fmt.Fprintf(&b, "  %3d  %-60s  %d lines\n", rec.Slide, first, len(rec.Texts))
	}
	return b.String()
}

func formatSlide(rec pptx.SlideRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Slide %d\n", rec.Slide)
	for _, t := range rec.Texts {
		fmt.Fprintf(&b, "  %s\n", t)
	}
	return b.String()
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return s.KnownCommands
	}

	if parts[0] == "slide" && (len(parts) == 2 || strings.HasSuffix(input, " ")) {
		prefix := ""
		if len(parts) == 2 {
			prefix = parts[1]
		}
		var matches []string
		if s.Presentation != nil {
			for _, rec := range s.Presentation.Slides {
				if n := strconv.Itoa(rec.Slide); strings.HasPrefix(n, prefix) {
					matches = append(matches, n)
				}
			}
		}
		return matches
	}

	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		var matches []string
		for _, cmd := range s.KnownCommands {
			if strings.HasPrefix(cmd, parts[0]) {
				matches = append(matches, cmd)
			}
		}
		sort.Strings(matches)
		return matches
	}
	return nil
}

const helpText = `Commands:
  open <file.pptx>  — extract and load a presentation
  list              — list slides with their first line
  slide <n>         — show all text of slide n
  find <text>       — find lines containing text (case-insensitive)
  stats             — show slide, line and character counts
  history           — show command history
  exit              — exit the shell
`

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.KnownCommands {
		if cmd == "slide" {
			items = append(items, readline.PcItem(cmd, readline.PcItemDynamic(func(line string) []string {
				return s.Complete(line)
			})))
			continue
		}
		items = append(items, readline.PcItem(cmd))
	}
	return items
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
