package gradebook

import "strconv"

// ColumnType tags a derived grade-sheet column.
type ColumnType string

const (
	ColumnAssignment ColumnType = "assignment"
	ColumnTotal      ColumnType = "total"
)

// Column is one body column of the grade sheet: either an assignment's grade
// cells or a category's subtotal cells.
type Column struct {
	Type       ColumnType  `json:"type"`
	Assignment *Assignment `json:"assignment,omitempty"`
	Category   *Category   `json:"category,omitempty"`
}

// CellKind tags a header cell.
type CellKind string

const (
	CellStudent    CellKind = "student"
	CellCategory   CellKind = "category"
	CellAssignment CellKind = "assignment"
	CellTotal      CellKind = "total"
	CellFinal      CellKind = "final"
)

// HeaderCell is one cell of the header grid with explicit spans, ready to be
// emitted as <th rowspan colspan> without the renderer knowing the tree.
type HeaderCell struct {
	Kind    CellKind `json:"kind"`
	Label   string   `json:"label"`
	RowSpan int      `json:"rowSpan"`
	ColSpan int      `json:"colSpan"`
	RefID   string   `json:"refId,omitempty"`
}

// Layout is the renderable linearization of a course's category forest:
// ordered body columns plus a header grid of Rows rows. It is derived on
// demand and never persisted.
type Layout struct {
	Columns []Column       `json:"columns"`
	Header  [][]HeaderCell `json:"header"`
	Rows    int            `json:"rows"`
}

// DeriveLayout walks the category forest once, producing body columns in
// pre-order (child subtrees first, then the category's direct assignments,
// then its own total column) and the header grid.
//
// The grid has MaxDepth+2 rows: one per category level, one for assignment
// and total headers under the deepest categories, which also gives a single
// root-only forest its category row plus content row. The student column
// leads and the final-grade column trails, both spanning every row.
func DeriveLayout(c *Course) Layout {
	tree := NewTree(c.Categories)
	rows := tree.MaxDepth() + 2

	layout := Layout{
		Header: make([][]HeaderCell, rows),
		Rows:   rows,
	}
	for i := range layout.Header {
		layout.Header[i] = []HeaderCell{}
	}

	layout.Header[0] = append(layout.Header[0], HeaderCell{
		Kind:    CellStudent,
		Label:   "Alumno",
		RowSpan: rows,
		ColSpan: 1,
	})

	visited := make(map[string]bool)
	for _, root := range tree.Roots() {
		walkLayout(c, tree, root, 0, visited, &layout)
	}

	layout.Header[0] = append(layout.Header[0], HeaderCell{
		Kind:    CellFinal,
		Label:   "NOTA FINAL",
		RowSpan: rows,
		ColSpan: 1,
	})

	if layout.Columns == nil {
		layout.Columns = []Column{}
	}
	return layout
}

func walkLayout(c *Course, tree *Tree, cat Category, level int, visited map[string]bool, layout *Layout) {
	if visited[cat.ID] || level >= layout.Rows-1 {
		return
	}
	visited[cat.ID] = true

	layout.Header[level] = append(layout.Header[level], HeaderCell{
		Kind:    CellCategory,
		Label:   cat.Name + " (" + strconv.FormatFloat(cat.Weight, 'f', -1, 64) + "%)",
		RowSpan: 1,
		ColSpan: subtreeColumns(c, tree, cat.ID),
		RefID:   cat.ID,
	})

	for _, child := range tree.ChildrenOf(cat.ID) {
		walkLayout(c, tree, child, level+1, visited, layout)
	}

	// Assignments and the category total sit one row below the category
	// header and span down to the bottom of the grid.
	contentLevel := level + 1
	rowSpan := layout.Rows - contentLevel

	for _, a := range c.Assignments {
		if a.CategoryID != cat.ID {
			continue
		}
		layout.Columns = append(layout.Columns, Column{Type: ColumnAssignment, Assignment: &a})
		layout.Header[contentLevel] = append(layout.Header[contentLevel], HeaderCell{
			Kind:    CellAssignment,
			Label:   a.Name,
			RowSpan: rowSpan,
			ColSpan: 1,
			RefID:   a.ID,
		})
	}

	layout.Columns = append(layout.Columns, Column{Type: ColumnTotal, Category: &cat})
	layout.Header[contentLevel] = append(layout.Header[contentLevel], HeaderCell{
		Kind:    CellTotal,
		Label:   "Total " + cat.Name,
		RowSpan: rowSpan,
		ColSpan: 1,
		RefID:   cat.ID,
	})
}

// subtreeColumns counts the body columns a category's subtree occupies: the
// columns of every child subtree, the category's own assignments, plus its
// total column.
func subtreeColumns(c *Course, tree *Tree, id string) int {
	cols := 1
	for _, child := range tree.ChildrenOf(id) {
		cols += subtreeColumns(c, tree, child.ID)
	}
	for _, a := range c.Assignments {
		if a.CategoryID == id {
			cols++
		}
	}
	return cols
}
