// Package batch extracts text from many presentations, isolating failures per file.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/klytics/slidetext/internal/formats/pptx"
)

// Status values for Result.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the outcome of one file.
type Result struct {
	File   string             `json:"file"`
	Status string             `json:"status"`
	Slides []pptx.SlideRecord `json:"slides,omitempty"`
	Output string             `json:"output,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Runner extracts files concurrently.
type Runner struct {
	Extractor   *pptx.Extractor
	Concurrency int
	// OutDir, when set, receives one <name>.json per successful file and
	// Result.Slides is left empty.
	OutDir string
	// OnDone is called once per finished file, from any goroutine.
	OnDone func(Result)

	Log zerolog.Logger
}

// Run processes files and returns one Result per file in input order. A
// failing file never stops the others.
func (r *Runner) Run(ctx context.Context, files []string) ([]Result, error) {
	if r.OutDir != "" {
		if err := os.MkdirAll(r.OutDir, 0755); err != nil {
			return nil, fmt.Errorf("could not create output directory %s: %w", r.OutDir, err)
		}
	}

	results := make([]Result, len(files))
	collisions := r.outputCollisions(files)
	sem := make(chan struct{}, max(r.Concurrency, 1))
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(idx int, f string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var res Result
			if err := collisions[idx]; err != nil {
				r.Log.Warn().Str("file", f).Err(err).Msg("skipping file")
				res = fail(Result{File: f}, err)
			} else {
				res = r.processFile(ctx, f)
			}
			results[idx] = res
			if r.OnDone != nil {
				r.OnDone(res)
			}
		}(i, file)
	}
	wg.Wait()

	return results, ctx.Err()
}

// outputCollisions maps the index of every file whose output name was
// already claimed by an earlier file to the error reported for it. Names are
// compared case-insensitively so the result does not depend on the file
// system. Without OutDir nothing is written and nothing collides.
func (r *Runner) outputCollisions(files []string) map[int]error {
	if r.OutDir == "" {
		return nil
	}
	claimed := make(map[string]string, len(files))
	collisions := make(map[int]error)
	for i, file := range files {
		key := strings.ToLower(OutputName(file))
		if first, ok := claimed[key]; ok {
			collisions[i] = fmt.Errorf("output name %s collides with %s — rename one of the files or extract them separately", OutputName(file), first)
			continue
		}
		claimed[key] = file
	}
	return collisions
}

func (r *Runner) processFile(ctx context.Context, file string) Result {
	res := Result{File: file, Status: StatusOK}
	log := r.Log.With().Str("file", file).Logger()

	if err := ctx.Err(); err != nil {
		return fail(res, err)
	}

	pres, err := r.Extractor.ReadFile(ctx, file)
	if err != nil {
		log.Warn().Err(err).Msg("extraction failed")
		return fail(res, err)
	}

	if r.OutDir == "" {
		res.Slides = pres.Slides
		log.Debug().Int("slides", len(pres.Slides)).Msg("extracted")
		return res
	}

	out := filepath.Join(r.OutDir, OutputName(file))
	if err := WriteRecords(out, pres.Slides); err != nil {
		return fail(res, err)
	}
	res.Output = out
	log.Debug().Str("output", out).Msg("written")
	return res
}

func fail(res Result, err error) Result {
	res.Status = StatusError
	res.Error = err.Error()
	return res
}

// OutputName maps deck.pptx to deck.json.
func OutputName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// WriteRecords writes records as an indented JSON array.
func WriteRecords(path string, records []pptx.SlideRecord) error {
	if records == nil {
		records = []pptx.SlideRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}

// Summarize counts results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Status == StatusOK {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
