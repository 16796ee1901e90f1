package pptx

import (
	"regexp"
	"strings"
)

var (
	// <a:p>, <a:p > or <a:p attr="..."> through the nearest </a:p>. A
	// self-closing <a:p/> or <a:p /> never opens a span.
	paragraphRe = regexp.MustCompile(`(?s)<a:p(?:\s(?:[^>]*[^/>])?)?>(.*?)</a:p>`)
	// Direct character content of <a:t>; nested markup stops the match.
	textRunRe = regexp.MustCompile(`<a:t(?:\s(?:[^>]*[^/>])?)?>([^<]*)</a:t>`)
)

// ScanText returns one line per paragraph of the given part, each line the
// concatenation of the paragraph's text runs in document order. Paragraphs
// without runs, and lines that come out empty, are dropped.
//
// When the part has no paragraph producing a line, every text run in the
// document becomes its own line instead. The two modes are never mixed.
func ScanText(xml string) []string {
	var lines []string
	for _, p := range paragraphRe.FindAllStringSubmatch(xml, -1) {
		runs := textRunRe.FindAllStringSubmatch(p[1], -1)
		if len(runs) == 0 {
			continue
		}
		var b strings.Builder
		for _, r := range runs {
			b.WriteString(r[1])
		}
		if b.Len() > 0 {
			lines = append(lines, b.String())
		}
	}
	if len(lines) > 0 {
		return lines
	}

	for _, r := range textRunRe.FindAllStringSubmatch(xml, -1) {
		if r[1] != "" {
			lines = append(lines, r[1])
		}
	}
	return lines
}
