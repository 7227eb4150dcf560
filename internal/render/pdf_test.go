package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"dails-report/internal/domain"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pageObject = regexp.MustCompile(`/Type\s*/Page[^s]`)

func TestPDFRenderer_Render(t *testing.T) {
	doc := Compose(Input{
		Declaration: sampleDeclaration(),
		Sections: []domain.MemberSection{{
			Kind: domain.MemberDeclarant,
			Holdings: domain.Holdings{
				Incomes: []domain.LineItem{{Type: "Salary", Description: "Net – after tax", Value: 1000}},
			},
		}},
	}, Options{Protected: true})

	out, err := NewPDFRenderer().Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderer_LongTableSpansPages(t *testing.T) {
	items := make([]domain.LineItem, 0, 200)
	for i := 0; i < 200; i++ {
		items = append(items, domain.LineItem{
			Type:        fmt.Sprintf("Item %d", i),
			Description: strings.Repeat("long description ", 8),
			Value:       float64(i),
		})
	}
	doc := Compose(Input{
		Declaration: sampleDeclaration(),
		Sections:    []domain.MemberSection{{Kind: domain.MemberDeclarant, Holdings: domain.Holdings{Assets: items}}},
	}, Options{})

	r := NewPDFRenderer()
	out, err := r.Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(pageObject.FindAll(out, -1)), 3)
}

func newTestMeasurer() (*fpdfMeasurer, *fpdf.Fpdf) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCellMargin(0)
	return &fpdfMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}, pdf
}

func TestFpdfMeasurer_WrapsOnWordsWithinWidth(t *testing.T) {
	m, pdf := newTestMeasurer()
	text := strings.Repeat("plot along the coast road ", 12)

	lines := m.Lines(text, 120, false)

	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, pdf.GetStringWidth(l), 120.0, l)
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")))
}

func TestFpdfMeasurer_SplitsLongWords(t *testing.T) {
	m, pdf := newTestMeasurer()
	word := strings.Repeat("x", 200)

	lines := m.Lines(word, 60, true)

	require.Greater(t, len(lines), 1)
	assert.Equal(t, word, strings.Join(lines, ""))
	for _, l := range lines {
		assert.LessOrEqual(t, pdf.GetStringWidth(l), 60.01)
	}
}

func TestFpdfMeasurer_EmptyAndNewlines(t *testing.T) {
	m, _ := newTestMeasurer()

	assert.Empty(t, m.Lines("", 100, false))
	assert.Equal(t, []string{"first", "second"}, m.Lines("first\nsecond", 500, false))
}

func newTestPainter(y float64) *painter {
	m, pdf := newTestMeasurer()
	pdf.AddPage()
	return &painter{
		pdf:     pdf,
		tr:      m.tr,
		metrics: DefaultMetrics,
		frame:   Frame{Top: 50, Bottom: 200},
		left:    pageMargin,
		width:   539,
		y:       y,
	}
}

func TestPainter_CaptionMovesWithItsTable(t *testing.T) {
	table := &Block{Kind: BlockTable, Table: &Table{
		Header: []string{"Type", "Description", "Value"},
		Rows:   [][]string{{"Salary", "Net", "KES 1,000.00"}},
	}}

	// caption alone would fit, caption plus header and first row would not
	p := newTestPainter(170)
	p.block(Block{Kind: BlockCaption, Text: "Income"}, table)
	assert.Equal(t, 2, p.pdf.PageNo())
	assert.Equal(t, 50+captionHeight, p.y)

	p = newTestPainter(100)
	p.block(Block{Kind: BlockCaption, Text: "Income"}, table)
	assert.Equal(t, 1, p.pdf.PageNo())
	assert.Equal(t, 100+captionHeight, p.y)
}

func TestPainter_OversizedBlockAtTopDoesNotAddPage(t *testing.T) {
	p := newTestPainter(50)
	p.ensure(1000)
	assert.Equal(t, 1, p.pdf.PageNo())
}
