package pptx

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// SlideRecord is the text extracted for one slide.
type SlideRecord struct {
	Slide int      `json:"slide" yaml:"slide"`
	Texts []string `json:"texts" yaml:"texts"`
}

// Options tunes an Extractor.
type Options struct {
	// Concurrency is the number of slides aggregated in parallel. Values
	// below 2 process slides one at a time.
	Concurrency int
	// DecodeEntities unescapes XML entities and character references in run text.
	DecodeEntities bool
	// Normalize converts every line to Unicode NFC.
	Normalize bool
	// ConventionalDiagrams also reads ppt/diagrams/dataN.xml for slide N when
	// no relationship already led there.
	ConventionalDiagrams bool
}

// Extractor turns packages into per-slide text records.
type Extractor struct {
	opts Options
	log  zerolog.Logger
}

// NewExtractor returns an Extractor that logs to log.
func NewExtractor(opts Options, log zerolog.Logger) *Extractor {
	return &Extractor{opts: opts, log: log}
}

// ReadFile opens the .pptx at path, extracts it and closes it.
func (e *Extractor) ReadFile(ctx context.Context, path string) (*Presentation, error) {
	pkg, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()
	return e.Extract(ctx, pkg)
}

// Extract runs ExtractAll and wraps the result in a Presentation.
func (e *Extractor) Extract(ctx context.Context, pkg Package) (*Presentation, error) {
	slides, err := e.ExtractAll(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return &Presentation{Slides: slides}, nil
}

// SlideIndexes returns the numbers of all slide parts in pkg, ascending.
// Parts under ppt/slides/ whose name is not slide<N>.xml are logged and
// skipped.
func (e *Extractor) SlideIndexes(pkg Package) []int {
	var idx []int
	for _, p := range pkg.PartPaths() {
		if n, ok := ParseSlideIndex(p); ok {
			idx = append(idx, n)
			continue
		}
		if strings.HasPrefix(p, slidePartPrefix) && strings.HasSuffix(p, ".xml") {
			e.log.Debug().Str("part", p).Msg("skipping slide part with unrecognized name")
		}
	}
	sort.Ints(idx)
	return idx
}

// ExtractAll aggregates every slide in pkg and returns the records ordered by
// slide number. The first failing slide aborts the extraction and no records
// are returned.
func (e *Extractor) ExtractAll(ctx context.Context, pkg Package) ([]SlideRecord, error) {
	indexes := e.SlideIndexes(pkg)
	e.log.Debug().Int("slides", len(indexes)).Msg("extracting package")

	records := make([]SlideRecord, len(indexes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.opts.Concurrency, 1))

	for i, n := range indexes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := e.Aggregate(pkg, n)
			if err != nil {
				return fmt.Errorf("could not extract %s: %w", SlidePartPath(n), err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// Aggregate builds the record for slide n: the slide's own lines, then the
// lines of every referenced diagram or chart part in reference order.
func (e *Extractor) Aggregate(pkg Package, n int) (SlideRecord, error) {
	rec := SlideRecord{Slide: n, Texts: []string{}}
	log := e.log.With().Int("slide", n).Logger()

	raw, err := pkg.ReadPart(SlidePartPath(n))
	if errors.Is(err, ErrPartNotFound) {
		log.Debug().Msg("slide part missing")
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	rec.Texts = append(rec.Texts, e.lines(raw)...)

	rels, err := ResolveRelationships(pkg, n)
	if err != nil {
		return rec, err
	}

	visited := make(map[string]bool)
	for _, id := range CollectReferenceIDs(raw) {
		target, ok := rels[id]
		if !ok {
			log.Debug().Str("rid", id).Msg("reference not in manifest, skipping")
			continue
		}
		kind := targetKind(target)
		if kind == "" {
			log.Debug().Str("rid", id).Str("target", target).Msg("ignoring non-embedded target")
			continue
		}
		part := PartPath(target)
		lines, err := e.scanPart(pkg, part)
		if err != nil {
			return rec, err
		}
		visited[part] = true
		log.Debug().Str("rid", id).Str("kind", kind).Str("part", part).Int("lines", len(lines)).Msg("embedded part scanned")
		rec.Texts = append(rec.Texts, lines...)
	}

	if e.opts.ConventionalDiagrams {
		part := DiagramDataPath(n)
		if !visited[part] {
			lines, err := e.scanPart(pkg, part)
			if err != nil {
				return rec, err
			}
			rec.Texts = append(rec.Texts, lines...)
		}
	}

	return rec, nil
}

// scanPart scans one part; a missing part has no lines.
func (e *Extractor) scanPart(pkg Package, path string) ([]string, error) {
	raw, err := pkg.ReadPart(path)
	if errors.Is(err, ErrPartNotFound) {
		e.log.Debug().Str("part", path).Msg("part missing")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e.lines(raw), nil
}

func (e *Extractor) lines(raw string) []string {
	lines := ScanText(raw)
	if !e.opts.DecodeEntities && !e.opts.Normalize {
		return lines
	}
	out := lines[:0]
	for _, l := range lines {
		if e.opts.DecodeEntities {
			l = DecodeEntities(l)
		}
		if e.opts.Normalize {
			l = norm.NFC.String(l)
		}
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// targetKind classifies a normalized target as "diagram", "chart" or "".
func targetKind(target string) string {
	switch {
	case hasSegment(target, "diagrams"):
		return "diagram"
	case hasSegment(target, "charts"):
		return "chart"
	}
	return ""
}

func hasSegment(target, seg string) bool {
	return strings.HasPrefix(target, seg+"/") || strings.Contains(target, "/"+seg+"/")
}
