// Package xlsx exports extracted slide text to .xlsx (Excel) workbooks.
package xlsx

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/slidetext/internal/formats/pptx"
)

// Sheet represents a single worksheet's data. The first row is the header.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook is the data written by WriteFile.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
}

// FromPresentation lays out one row per text line: slide, line number, text.
// Slides without text get a single row with an empty text cell.
func FromPresentation(pres *pptx.Presentation) *Workbook {
	rows := [][]string{{"Slide", "Line", "Text"}}
	for _, s := range pres.Slides {
		slide := strconv.Itoa(s.Slide)
		if len(s.Texts) == 0 {
			rows = append(rows, []string{slide, "", ""})
			continue
		}
		for i, t := range s.Texts {
			rows = append(rows, []string{slide, strconv.Itoa(i + 1), t})
		}
	}
	return &Workbook{Sheets: []Sheet{{Name: "Slides", Rows: rows}}}
}

// WriteFile creates a new .xlsx file from the given workbook data.
func WriteFile(wb *Workbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("could not create header style: %w", err)
	}

	for i, sheet := range wb.Sheets {
		sheetName := sheet.Name
		if sheetName == "" {
			sheetName = fmt.Sprintf("Sheet%d", i+1)
		}

		if i == 0 {
			// Rename default sheet
			if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
				return fmt.Errorf("could not rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheetName); err != nil {
			return fmt.Errorf("could not create sheet %q: %w", sheetName, err)
		}

		for rowIdx, row := range sheet.Rows {
			for colIdx, cell := range row {
				cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return fmt.Errorf("invalid cell coordinates: %w", err)
				}
				if err := f.SetCellValue(sheetName, cellName, cellValue(cell, colIdx, rowIdx)); err != nil {
					return fmt.Errorf("could not set cell %s: %w", cellName, err)
				}
			}
		}

		if len(sheet.Rows) > 0 && len(sheet.Rows[0]) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(sheet.Rows[0]), 1)
			if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
				return fmt.Errorf("could not style header: %w", err)
			}
		}
		if err := f.SetColWidth(sheetName, "C", "C", 80); err != nil {
			return fmt.Errorf("could not size text column: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}

// cellValue stores the slide and line columns as numbers so they sort numerically.
func cellValue(cell string, col, row int) interface{} {
	if row > 0 && col < 2 {
		if n, err := strconv.Atoi(cell); err == nil {
			return n
		}
	}
	return cell
}

// WritePresentation exports pres to path.
func WritePresentation(pres *pptx.Presentation, path string) error {
	return WriteFile(FromPresentation(pres), path)
}
