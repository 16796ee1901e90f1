package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/klytics/slidetext/internal/formats/pptx"
)

func testPresentation() *pptx.Presentation {
	return &pptx.Presentation{Slides: []pptx.SlideRecord{
		{Slide: 1, Texts: []string{"Hello World", "Second"}},
		{Slide: 2, Texts: []string{}},
	}}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatText,
		"text":     FormatText,
		"JSON":     FormatJSON,
		"yml":      FormatYAML,
		"markdown": FormatMarkdown,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderJSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, testPresentation()); err != nil {
		t.Fatal(err)
	}

	var got []struct {
		Slide int      `json:"slide"`
		Texts []string `json:"texts"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 2 || got[0].Texts[1] != "Second" {
		t.Errorf("decoded = %+v", got)
	}
	if !strings.Contains(buf.String(), `"texts": []`) {
		t.Errorf("empty slide should encode texts as [], got:\n%s", buf.String())
	}
}

func TestRenderJSONEmptyPresentation(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, &pptx.Presentation{}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q, want []", buf.String())
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatYAML, testPresentation()); err != nil {
		t.Fatal(err)
	}
	var got []pptx.SlideRecord
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Slide != 1 || got[0].Texts[0] != "Hello World" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestRenderMarkdownAndText(t *testing.T) {
	var md, txt bytes.Buffer
	if err := Render(&md, FormatMarkdown, testPresentation()); err != nil {
		t.Fatal(err)
	}
	if err := Render(&txt, FormatText, testPresentation()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"## Slide 1", "- Hello World", "_No text._"} {
		if !strings.Contains(md.String(), want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if !strings.Contains(txt.String(), "--- Slide 2 ---") {
		t.Errorf("text output = %q", txt.String())
	}
}
