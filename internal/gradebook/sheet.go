package gradebook

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SheetCell is one body cell of the rendered grade sheet. Value is nil for
// ungraded assignment cells and for category totals with no contribution.
type SheetCell struct {
	Kind  ColumnType `json:"kind"`
	RefID string     `json:"refId"`
	Value *float64   `json:"value"`
}

// SheetRow is one student's rendered row. Final carries the aggregated
// final grade; consumers render 0 as "no grade yet".
type SheetRow struct {
	StudentID string      `json:"studentId"`
	Label     string      `json:"label"`
	Cells     []SheetCell `json:"cells"`
	Final     float64     `json:"final"`
}

// Sheet is the full renderable grade table for a course: the derived layout
// plus one row per student. It is recomputed from course state on every
// request; nothing in it is persisted.
type Sheet struct {
	CourseID string     `json:"courseId"`
	Layout   Layout     `json:"layout"`
	RowData  []SheetRow `json:"rows"`
}

// RenderSheet derives the layout and computes every student's cells and
// final grade. Rows are ordered by surname then name with Spanish collation
// so accented surnames sort where a class list expects them.
func RenderSheet(c *Course) Sheet {
	tree := NewTree(c.Categories)
	layout := DeriveLayout(c)

	sheet := Sheet{
		CourseID: c.ID,
		Layout:   layout,
		RowData:  []SheetRow{},
	}

	students := make([]Student, len(c.Students))
	copy(students, c.Students)
	col := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(students, func(i, j int) bool {
		if cmp := col.CompareString(students[i].Surname, students[j].Surname); cmp != 0 {
			return cmp < 0
		}
		return col.CompareString(students[i].Name, students[j].Name) < 0
	})

	for _, s := range students {
		row := SheetRow{
			StudentID: s.ID,
			Label:     s.Surname + ", " + s.Name,
			Cells:     make([]SheetCell, 0, len(layout.Columns)),
		}
		for _, column := range layout.Columns {
			switch column.Type {
			case ColumnAssignment:
				cell := SheetCell{Kind: ColumnAssignment, RefID: column.Assignment.ID}
				if entry, ok := c.Grades[s.ID][column.Assignment.ID]; ok && !math.IsNaN(entry.Value) {
					v := entry.Value
					cell.Value = &v
				}
				row.Cells = append(row.Cells, cell)
			case ColumnTotal:
				cell := SheetCell{Kind: ColumnTotal, RefID: column.Category.ID}
				if total, ok := CategoryGrade(c, tree, *column.Category, s.ID); ok {
					cell.Value = &total
				}
				row.Cells = append(row.Cells, cell)
			}
		}
		row.Final = FinalGrade(c, tree, s.ID)
		sheet.RowData = append(sheet.RowData, row)
	}

	return sheet
}
