// Package output provides formatting utilities for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klytics/slidetext/internal/formats/pptx"
)

// Format represents an output format.
type Format int

const (
	// FormatText is plain text output.
	FormatText Format = iota
	// FormatJSON is the bare slide array the HTTP service also returns.
	FormatJSON
	// FormatYAML is YAML output.
	FormatYAML
	// FormatMarkdown is Markdown output.
	FormatMarkdown
)

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return FormatText, fmt.Errorf("unknown format %q — supported: text, json, yaml, markdown", name)
}

// Render writes the presentation to w in the given format.
func Render(w io.Writer, format Format, pres *pptx.Presentation) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(slides(pres))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(slides(pres)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(pres))
		return err
	default:
		_, err := io.WriteString(w, pres.PlainText())
		return err
	}
}

// Markdown renders one section per slide with its lines as a bullet list.
func Markdown(pres *pptx.Presentation) string {
	var b strings.Builder
	for i, s := range pres.Slides {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## Slide %d\n\n", s.Slide)
		if len(s.Texts) == 0 {
			b.WriteString("_No text._\n")
			continue
		}
		for _, t := range s.Texts {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return b.String()
}

func slides(pres *pptx.Presentation) []pptx.SlideRecord {
	if pres.Slides == nil {
		return []pptx.SlideRecord{}
	}
	return pres.Slides
}
