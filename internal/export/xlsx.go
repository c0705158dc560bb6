// Package export turns rendered sheets into xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gestornotas/gradebook/internal/gradebook"
)

// Workbook builds an xlsx workbook from a rendered sheet. The header grid
// mirrors the on-screen table: merged category cells over their subtree
// columns, assignment and total cells stretched to the bottom header row.
func Workbook(sheet *gradebook.Sheet, courseName string) (*excelize.File, error) {
	f := excelize.NewFile()
	name := sheetName(courseName)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	width := len(sheet.Layout.Columns) + 2 // student column + grade columns + final column
	if err := writeHeader(f, name, sheet, width); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeBody(f, name, sheet, width); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// Write streams the workbook for a rendered sheet to w.
func Write(w io.Writer, sheet *gradebook.Sheet, courseName string) error {
	f, err := Workbook(sheet, courseName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, name string, sheet *gradebook.Sheet, width int) error {
	rows := sheet.Layout.Rows
	occupied := make([][]bool, rows)
	for i := range occupied {
		occupied[i] = make([]bool, width)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for r, cells := range sheet.Layout.Header {
		col := 0
		for _, cell := range cells {
			for col < width && occupied[r][col] {
				col++
			}
			if col+cell.ColSpan > width || r+cell.RowSpan > rows {
				return fmt.Errorf("header cell %q does not fit the grid", cell.Label)
			}

			top, err := excelize.CoordinatesToCellName(col+1, r+1)
			if err != nil {
				return fmt.Errorf("header coordinates: %w", err)
			}
			bottom, err := excelize.CoordinatesToCellName(col+cell.ColSpan, r+cell.RowSpan)
			if err != nil {
				return fmt.Errorf("header coordinates: %w", err)
			}

			if err := f.SetCellValue(name, top, cell.Label); err != nil {
				return fmt.Errorf("writing header cell %q: %w", cell.Label, err)
			}
			if cell.RowSpan > 1 || cell.ColSpan > 1 {
				if err := f.MergeCell(name, top, bottom); err != nil {
					return fmt.Errorf("merging header cell %q: %w", cell.Label, err)
				}
			}
			if err := f.SetCellStyle(name, top, bottom, bold); err != nil {
				return fmt.Errorf("styling header cell %q: %w", cell.Label, err)
			}

			for rr := r; rr < r+cell.RowSpan; rr++ {
				for cc := col; cc < col+cell.ColSpan; cc++ {
					occupied[rr][cc] = true
				}
			}
			col += cell.ColSpan
		}
	}

	return nil
}

func writeBody(f *excelize.File, name string, sheet *gradebook.Sheet, width int) error {
	for i, row := range sheet.RowData {
		excelRow := sheet.Layout.Rows + 1 + i

		axis, err := excelize.CoordinatesToCellName(1, excelRow)
		if err != nil {
			return fmt.Errorf("body coordinates: %w", err)
		}
		if err := f.SetCellValue(name, axis, row.Label); err != nil {
			return fmt.Errorf("writing student %q: %w", row.Label, err)
		}

		for j, cell := range row.Cells {
			if cell.Value == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+2, excelRow)
			if err != nil {
				return fmt.Errorf("body coordinates: %w", err)
			}
			if err := f.SetCellValue(name, axis, *cell.Value); err != nil {
				return fmt.Errorf("writing grade for %q: %w", row.Label, err)
			}
		}

		axis, err = excelize.CoordinatesToCellName(width, excelRow)
		if err != nil {
			return fmt.Errorf("body coordinates: %w", err)
		}
		if err := f.SetCellValue(name, axis, row.Final); err != nil {
			return fmt.Errorf("writing final for %q: %w", row.Label, err)
		}
	}

	return nil
}

// sheetName trims a course name down to a legal xlsx sheet name.
func sheetName(courseName string) string {
	name := strings.TrimSpace(courseName)
	if name == "" {
		name = "Notas"
	}
	replacer := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")
	name = replacer.Replace(name)
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
