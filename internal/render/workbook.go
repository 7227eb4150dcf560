package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const workbookSheet = "Declaration"

// WorkbookRenderer writes a Document as a single-sheet xlsx workbook. When
// Password is set the workbook is encrypted with it.
type WorkbookRenderer struct {
	Password string

	// write defaults to (*excelize.File).Write
	write func(f *excelize.File, w io.Writer, opts ...excelize.Options) error
}

func (r *WorkbookRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r *WorkbookRenderer) Extension() string { return "xlsx" }

func (r *WorkbookRenderer) Render(doc Document) ([]byte, error) {
	data, _, err := r.RenderProtected(doc)
	return data, err
}

// RenderProtected is Render that also reports whether the password was
// applied. A failed encryption falls back to the plain workbook.
func (r *WorkbookRenderer) RenderProtected(doc Document) ([]byte, bool, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), workbookSheet); err != nil {
		return nil, false, fmt.Errorf("rename sheet: %w", err)
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   doc.Title,
		Creator: doc.Subtitle,
	})
	_ = f.SetColWidth(workbookSheet, "A", "A", 34)
	_ = f.SetColWidth(workbookSheet, "B", "B", 60)
	_ = f.SetColWidth(workbookSheet, "C", "C", 22)

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, false, err
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12, Color: "003366"}})
	if err != nil {
		return nil, false, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6EEF5"}, Pattern: 1},
	})
	if err != nil {
		return nil, false, err
	}
	captionStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, false, err
	}
	noteStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Color: "555555"}})
	if err != nil {
		return nil, false, err
	}

	row := 1
	put := func(col int, value string, style int) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(workbookSheet, cell, value)
		if style != 0 {
			_ = f.SetCellStyle(workbookSheet, cell, cell, style)
		}
	}

	put(1, doc.Title, titleStyle)
	row++
	put(1, doc.Subtitle, 0)
	row++
	if doc.Banner != "" {
		put(1, doc.Banner, noteStyle)
		row++
	}

	for _, b := range doc.Blocks {
		switch b.Kind {
		case BlockSection:
			row++
			put(1, b.Text, sectionStyle)
			row++
		case BlockCaption:
			put(1, b.Text, captionStyle)
			row++
		case BlockNote:
			row++
			put(1, b.Text, noteStyle)
			row++
		case BlockTable:
			if len(b.Table.Rows) == 0 {
				put(1, b.Table.EmptyMessage, noteStyle)
				row++
				continue
			}
			for i, h := range b.Table.Header {
				put(i+1, h, headerStyle)
			}
			row++
			for _, r := range b.Table.Rows {
				for i, v := range r {
					put(i+1, v, 0)
				}
				row++
			}
		}
	}

	write := r.write
	if write == nil {
		write = func(f *excelize.File, w io.Writer, opts ...excelize.Options) error {
			return f.Write(w, opts...)
		}
	}

	var buf bytes.Buffer
	if r.Password != "" {
		if err := write(f, &buf, excelize.Options{Password: r.Password}); err == nil {
			return buf.Bytes(), true, nil
		}
		buf.Reset()
	}
	if err := write(f, &buf); err != nil {
		return nil, false, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), false, nil
}
