package xlsx

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/slidetext/internal/formats/pptx"
)

func TestFromPresentation(t *testing.T) {
	pres := &pptx.Presentation{Slides: []pptx.SlideRecord{
		{Slide: 1, Texts: []string{"Hello World", "Second"}},
		{Slide: 2, Texts: []string{}},
		{Slide: 10, Texts: []string{"Q1 Revenue"}},
	}}

	wb := FromPresentation(pres)
	want := [][]string{
		{"Slide", "Line", "Text"},
		{"1", "1", "Hello World"},
		{"1", "2", "Second"},
		{"2", "", ""},
		{"10", "1", "Q1 Revenue"},
	}
	if len(wb.Sheets) != 1 || !reflect.DeepEqual(wb.Sheets[0].Rows, want) {
		t.Errorf("rows = %v", wb.Sheets[0].Rows)
	}
}

func TestWritePresentation(t *testing.T) {
	pres := &pptx.Presentation{Slides: []pptx.SlideRecord{
		{Slide: 1, Texts: []string{"Hello World"}},
		{Slide: 2, Texts: []string{"Q1 Revenue", "Q2"}},
	}}
	path := filepath.Join(t.TempDir(), "slides.xlsx")

	if err := WritePresentation(pres, path); err != nil {
		t.Fatalf("WritePresentation failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Slides"}) {
		t.Errorf("sheets = %v", got)
	}
	rows, err := f.GetRows("Slides")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[3], []string{"2", "2", "Q2"}) {
		t.Errorf("last row = %v", rows[3])
	}
}
