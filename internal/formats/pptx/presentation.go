package pptx

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Presentation is the extracted text of a whole package.
type Presentation struct {
	Slides []SlideRecord `json:"slides" yaml:"slides"`
}

// Stats summarizes a Presentation.
type Stats struct {
	Slides      int `json:"slides"`
	EmptySlides int `json:"emptySlides"`
	Lines       int `json:"lines"`
	Characters  int `json:"characters"`
}

// Match is one line found by Find.
type Match struct {
	Slide int    `json:"slide"`
	Line  int    `json:"line"`
	Text  string `json:"text"`
}

// PlainText returns all slide text as plain text.
func (p *Presentation) PlainText() string {
	var b strings.Builder
	for _, slide := range p.Slides {
		fmt.Fprintf(&b, "--- Slide %d ---\n", slide.Slide)
		for _, text := range slide.Texts {
			fmt.Fprintf(&b, "%s\n", text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Slide returns the record for slide n.
func (p *Presentation) Slide(n int) (SlideRecord, bool) {
	for _, s := range p.Slides {
		if s.Slide == n {
			return s, true
		}
	}
	return SlideRecord{}, false
}

// Find returns every line containing query, case-insensitively.
func (p *Presentation) Find(query string) []Match {
	q := strings.ToLower(query)
	var out []Match
	for _, s := range p.Slides {
		for i, text := range s.Texts {
			if strings.Contains(strings.ToLower(text), q) {
				out = append(out, Match{Slide: s.Slide, Line: i + 1, Text: text})
			}
		}
	}
	return out
}

// Stats counts slides, lines and characters.
func (p *Presentation) Stats() Stats {
	st := Stats{Slides: len(p.Slides)}
	for _, s := range p.Slides {
		if len(s.Texts) == 0 {
			st.EmptySlides++
		}
		st.Lines += len(s.Texts)
		for _, t := range s.Texts {
			st.Characters += utf8.RuneCountInString(t)
		}
	}
	return st
}
