package render

import (
	"math"
	"strings"
)

// Measurer wraps text into lines that fit a given width.
type Measurer interface {
	Lines(text string, width float64, header bool) []string
}

// Metrics holds the fixed table dimensions.
type Metrics struct {
	LineHeight    float64
	HeaderPadding float64
	RowPadding    float64
	CellInset     float64 // horizontal inset applied to both sides of a cell
	MaxCellText   int
}

var DefaultMetrics = Metrics{
	LineHeight:    10,
	HeaderPadding: 6,
	RowPadding:    5,
	CellInset:     4,
	MaxCellText:   500,
}

const emptyTableHeight = 16.0

// Frame is the vertical content area of a page.
type Frame struct {
	Top    float64
	Bottom float64
}

// PlacedRow is a table row with its final position.
type PlacedRow struct {
	Y       float64
	Height  float64
	Cells   [][]string
	Header  bool
	NewPage bool // a page break comes before this row
	Index   int  // body row index, -1 for header rows
}

// ColumnWidths splits the available width evenly across columns.
func ColumnWidths(available float64, columns int) []float64 {
	if columns <= 0 {
		return nil
	}
	w := float64(int(available / float64(columns)))
	out := make([]float64, columns)
	for i := range out {
		out[i] = w
	}
	return out
}

// LayoutTable measures every row and assigns it a y position starting at
// cursor. A row that would cross frame.Bottom moves to the top of a new page,
// and the header row is repeated there. It returns the rows and the y
// position after the last one.
func LayoutTable(m Measurer, metrics Metrics, header []string, rows [][]string, widths []float64, cursor float64, frame Frame) ([]PlacedRow, float64) {
	measure := func(vals []string, isHeader bool) ([][]string, float64) {
		cells := make([][]string, len(widths))
		maxLines := 1
		for i := range widths {
			text := ""
			if i < len(vals) {
				text = truncate(vals[i], metrics.MaxCellText)
			}
			lines := m.Lines(text, widths[i]-2*metrics.CellInset, isHeader)
			if len(lines) == 0 {
				lines = []string{""}
			}
			cells[i] = lines
			if len(lines) > maxLines {
				maxLines = len(lines)
			}
		}
		pad := metrics.RowPadding
		if isHeader {
			pad = metrics.HeaderPadding
		}
		return cells, float64(maxLines)*metrics.LineHeight + 2*pad
	}

	headCells, headHeight := measure(header, true)

	var placed []PlacedRow
	y := cursor
	place := func(cells [][]string, h float64, isHeader bool, idx int, newPage bool) {
		placed = append(placed, PlacedRow{Y: y, Height: h, Cells: cells, Header: isHeader, NewPage: newPage, Index: idx})
		y += h
	}

	// keep the header together with at least the first row
	firstHeight := headHeight
	if len(rows) > 0 {
		_, h := measure(rows[0], false)
		firstHeight += h
	}
	newPage := false
	if y+firstHeight > frame.Bottom && y > frame.Top {
		y = frame.Top
		newPage = true
	}
	place(headCells, headHeight, true, -1, newPage)

	for i, r := range rows {
		cells, h := measure(r, false)
		if y+h > frame.Bottom && y > frame.Top+headHeight {
			y = frame.Top
			place(headCells, headHeight, true, -1, true)
		}
		place(cells, h, false, i, false)
	}

	return placed, y
}

// LeadHeight is the space a table needs before it can start on the current
// page: the header plus the first row, or one line for an empty table.
func LeadHeight(m Measurer, metrics Metrics, header []string, rows [][]string, widths []float64) float64 {
	if len(rows) == 0 {
		return emptyTableHeight
	}
	placed, _ := LayoutTable(m, metrics, header, rows[:1], widths, 0, Frame{Top: 0, Bottom: math.MaxFloat64})
	h := 0.0
	for _, r := range placed {
		h += r.Height
	}
	return h
}

// Fits reports whether a block of height h still fits below cursor.
func Fits(cursor, h float64, frame Frame) bool {
	return cursor+h <= frame.Bottom
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\r", "")
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
