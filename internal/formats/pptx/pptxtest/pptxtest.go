// Package pptxtest builds small .pptx packages for tests and fixtures.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Build zips parts into a package. Parts are written in path order.
func Build(parts map[string]string) ([]byte, error) {
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("could not add %s: %w", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			return nil, fmt.Errorf("could not write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile builds a package and writes it to path.
func WriteFile(path string, parts map[string]string) error {
	data, err := Build(parts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Paragraphs renders DrawingML paragraphs; each inner slice is one paragraph's runs.
func Paragraphs(paras ...[]string) string {
	var b strings.Builder
	for _, runs := range paras {
		b.WriteString("<a:p>")
		for _, r := range runs {
			fmt.Fprintf(&b, `<a:r><a:rPr lang="en-US" dirty="0"/><a:t>%s</a:t></a:r>`, r)
		}
		b.WriteString("</a:p>")
	}
	return b.String()
}

// Slide wraps body markup in a slide part.
func Slide(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:cSld><p:spTree><p:sp><p:txBody><a:bodyPr/>` + body + `</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

// ChartRef is the graphic frame markup embedding a chart by relationship id.
func ChartRef(rid string) string {
	return `<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart">` +
		`<c:chart xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" r:id="` + rid + `"/>` +
		`</a:graphicData></a:graphic>`
}

// DiagramRef is the graphic frame markup embedding SmartArt by data-model id.
func DiagramRef(dm string) string {
	return `<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/diagram">` +
		`<dgm:relIds xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" ` +
		`r:dm="` + dm + `" r:lo="` + dm + `lo" r:qs="` + dm + `qs" r:cs="` + dm + `cs"/>` +
		`</a:graphicData></a:graphic>`
}

// Rels renders a relationship manifest from id → target pairs.
func Rels(targets map[string]string) string {
	ids := make([]string, 0, len(targets))
	for id := range targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, id := range ids {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart" Target="%s"/>`, id, targets[id])
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// Chart renders a chart part whose title holds the given paragraphs.
func Chart(paras ...[]string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<c:chartSpace xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" ` +
		`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
		`<c:chart><c:title><c:tx><c:rich><a:bodyPr/>` + Paragraphs(paras...) +
		`</c:rich></c:tx></c:title></c:chart></c:chartSpace>`
}

// DiagramData renders a SmartArt data-model part with one point per label.
func DiagramData(labels ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<dgm:dataModel xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" `)
	b.WriteString(`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><dgm:ptLst>`)
	for i, l := range labels {
		fmt.Fprintf(&b, `<dgm:pt modelId="{%d}"><dgm:t><a:bodyPr/>%s</dgm:t></dgm:pt>`, i+1, Paragraphs([]string{l}))
	}
	b.WriteString(`</dgm:ptLst></dgm:dataModel>`)
	return b.String()
}

// Sample is a three-slide deck: a title slide, a slide with a chart and a
// SmartArt diagram, and a slide without text.
func Sample() map[string]string {
	title := Slide(Paragraphs(
		[]string{"Quarterly ", "Business Review"},
		[]string{"Prepared for the board"},
	))
	revenue := Slide(Paragraphs([]string{"Revenue by quarter"}) + ChartRef("rId2") + DiagramRef("rId3"))
	rels := Rels(map[string]string{
		"rId1": "../slideLayouts/slideLayout2.xml",
		"rId2": "../charts/chart1.xml",
		"rId3": "../diagrams/data1.xml",
	})

	return map[string]string{
		"[Content_Types].xml":               `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"ppt/presentation.xml":              `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
		"ppt/slides/slide1.xml":             title,
		"ppt/slides/slide2.xml":             revenue,
		"ppt/slides/_rels/slide2.xml.rels":  rels,
		"ppt/charts/chart1.xml":             Chart([]string{"Revenue (USD millions)"}),
		"ppt/diagrams/data1.xml":            DiagramData("Plan", "Build", "Ship"),
		"ppt/slides/slide3.xml":             Slide(""),
		"ppt/slideLayouts/slideLayout2.xml": `<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
	}
}
