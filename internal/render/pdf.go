package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin    = 28.0
	footerReserve = 18.0
	bodyFontSize  = 8.0
	headFontSize  = 9.0
)

// PDFRenderer draws a Document onto A4 pages.
type PDFRenderer struct {
	Metrics Metrics
	Author  string
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Metrics: DefaultMetrics, Author: DefaultOrganisation}
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }

func (r *PDFRenderer) Extension() string { return "pdf" }

func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetCellMargin(0)
	pdf.AliasNbPages("{nb}")
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(r.Author, true)
	pdf.SetCreator("dails-report", false)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	width := pageW - 2*pageMargin

	pdf.SetHeaderFunc(func() {
		pdf.SetY(pageMargin)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 15)
		pdf.CellFormat(width, 20, tr(doc.Title), "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(width, 15, tr(doc.Subtitle), "", 1, "C", false, 0, "")
		if doc.Banner != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(68, 68, 68)
			pdf.CellFormat(width, 13, tr(doc.Banner), "", 1, "C", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.SetY(pdf.GetY() + 6)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(pageH - pageMargin - 12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(85, 85, 85)
		pdf.CellFormat(width, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	frame := Frame{Top: pdf.GetY(), Bottom: pageH - pageMargin - footerReserve}

	p := &painter{
		pdf:     pdf,
		tr:      tr,
		metrics: r.Metrics,
		frame:   frame,
		left:    pageMargin,
		width:   width,
		y:       frame.Top,
	}
	for i, b := range doc.Blocks {
		var next *Block
		if i+1 < len(doc.Blocks) {
			next = &doc.Blocks[i+1]
		}
		p.block(b, next)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type painter struct {
	pdf     *fpdf.Fpdf
	tr      func(string) string
	metrics Metrics
	frame   Frame
	left    float64
	width   float64
	y       float64
}

// ensure starts a new page unless h fits below the cursor or the cursor is
// already at the top.
func (p *painter) ensure(h float64) {
	if !Fits(p.y, h, p.frame) && p.y > p.frame.Top {
		p.newPage()
	}
}

func (p *painter) newPage() {
	p.pdf.AddPage()
	p.y = p.frame.Top
}

const captionHeight = 14.0

func (p *painter) block(b Block, next *Block) {
	switch b.Kind {
	case BlockSection:
		p.ensure(40)
		p.y += 6
		p.pdf.SetFont("Helvetica", "B", 12)
		p.pdf.SetTextColor(0, 51, 102)
		p.pdf.SetXY(p.left, p.y)
		p.pdf.CellFormat(p.width, 16, p.tr(b.Text), "", 0, "L", false, 0, "")
		p.pdf.SetTextColor(0, 0, 0)
		p.y += 20

	case BlockCaption:
		// keep the caption on the page its table starts on
		need := captionHeight + emptyTableHeight
		if next != nil && next.Kind == BlockTable {
			t := next.Table
			need = captionHeight + LeadHeight(p.measurer(), p.metrics, t.Header, t.Rows, ColumnWidths(p.width, len(t.Header)))
		}
		p.ensure(need)
		p.pdf.SetFont("Helvetica", "B", headFontSize)
		p.pdf.SetXY(p.left, p.y)
		p.pdf.CellFormat(p.width, 12, p.tr(b.Text), "", 0, "L", false, 0, "")
		p.y += captionHeight

	case BlockTable:
		p.table(b.Table)

	case BlockNote:
		p.ensure(24)
		p.y += 6
		p.pdf.SetFont("Helvetica", "", bodyFontSize)
		p.pdf.SetTextColor(85, 85, 85)
		p.pdf.SetXY(p.left, p.y)
		p.pdf.CellFormat(p.width, 12, p.tr(b.Text), "", 0, "C", false, 0, "")
		p.pdf.SetTextColor(0, 0, 0)
		p.y += 14
	}
}

func (p *painter) measurer() Measurer {
	return &fpdfMeasurer{pdf: p.pdf, tr: p.tr}
}

func (p *painter) table(t *Table) {
	if len(t.Rows) == 0 {
		p.ensure(emptyTableHeight)
		p.pdf.SetFont("Helvetica", "I", bodyFontSize)
		p.pdf.SetXY(p.left, p.y)
		p.pdf.CellFormat(p.width, 12, p.tr(t.EmptyMessage), "", 0, "L", false, 0, "")
		p.y += emptyTableHeight
		return
	}

	widths := ColumnWidths(p.width, len(t.Header))
	placed, end := LayoutTable(p.measurer(), p.metrics, t.Header, t.Rows, widths, p.y, p.frame)

	total := 0.0
	for _, w := range widths {
		total += w
	}

	p.pdf.SetDrawColor(204, 204, 204)
	for _, row := range placed {
		if row.NewPage {
			p.newPage()
		}
		pad := p.metrics.RowPadding
		switch {
		case row.Header:
			pad = p.metrics.HeaderPadding
			p.pdf.SetFillColor(230, 238, 245)
			p.pdf.Rect(p.left, row.Y, total, row.Height, "F")
			p.pdf.SetFont("Helvetica", "B", headFontSize)
		case t.Zebra && row.Index%2 == 0:
			p.pdf.SetFillColor(250, 250, 250)
			p.pdf.Rect(p.left, row.Y, total, row.Height, "F")
			p.pdf.SetFont("Helvetica", "", bodyFontSize)
		default:
			p.pdf.SetFont("Helvetica", "", bodyFontSize)
		}

		x := p.left
		for i, lines := range row.Cells {
			p.pdf.Rect(x, row.Y, widths[i], row.Height, "D")
			for n, line := range lines {
				p.pdf.SetXY(x+p.metrics.CellInset, row.Y+pad+float64(n)*p.metrics.LineHeight)
				p.pdf.CellFormat(widths[i]-2*p.metrics.CellInset, p.metrics.LineHeight, line, "", 0, "L", false, 0, "")
			}
			x += widths[i]
		}
	}
	p.y = end + 8
}

// fpdfMeasurer wraps text with the current core font metrics. Lines come back
// already translated to the font's code page.
type fpdfMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (m *fpdfMeasurer) Lines(text string, width float64, header bool) []string {
	if header {
		m.pdf.SetFont("Helvetica", "B", headFontSize)
	} else {
		m.pdf.SetFont("Helvetica", "", bodyFontSize)
	}
	split := m.pdf.SplitLines([]byte(m.tr(text)), width)
	lines := make([]string, 0, len(split))
	for _, l := range split {
		lines = append(lines, string(l))
	}
	return lines
}
