package render

import (
	"testing"

	"dails-report/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

// tablesAfter returns the tables that directly follow blocks with the given text.
func tablesAfter(doc Document, text string) []*Table {
	var out []*Table
	for i, b := range doc.Blocks {
		if b.Text == text && i+1 < len(doc.Blocks) && doc.Blocks[i+1].Kind == BlockTable {
			out = append(out, doc.Blocks[i+1].Table)
		}
	}
	return out
}

func valueOf(t *Table, key string) (string, bool) {
	for _, r := range t.Rows {
		if r[0] == key {
			return r[1], true
		}
	}
	return "", false
}

func sampleDeclaration() domain.Declaration {
	return domain.Declaration{
		ID:              42,
		DeclarationType: strp("biennial"),
		DeclarationDate: strp("2024-07-01"),
		Status:          strp("pending"),
		PeriodStart:     strp("2022-07-01"),
		PeriodEnd:       strp("2024-06-30"),
		FirstName:       strp("Amina"),
		Surname:         strp("Otieno"),
		NationalID:      strp("12345678"),
	}
}

func TestCompose_DeclarantOnly(t *testing.T) {
	doc := Compose(Input{
		Declaration: sampleDeclaration(),
		Sections: []domain.MemberSection{{
			Kind:            domain.MemberDeclarant,
			Name:            "Amina Otieno",
			DeclarationDate: "2024-07-01",
			PeriodStart:     "2022-07-01",
			PeriodEnd:       "2024-06-30",
			Holdings: domain.Holdings{
				Incomes: []domain.LineItem{{Category: domain.CategoryIncome, Type: "Salary", Description: "Net", Value: 1000}},
			},
		}},
	}, Options{})

	assert.Equal(t, DefaultTitle, doc.Title)
	assert.Equal(t, DefaultOrganisation, doc.Subtitle)
	assert.Empty(t, doc.Banner)

	incomes := tablesAfter(doc, "Income")
	require.Len(t, incomes, 1)
	assert.Equal(t, []string{"Type", "Description", "Value"}, incomes[0].Header)
	assert.Equal(t, [][]string{{"Salary", "Net", "KES 1,000.00"}}, incomes[0].Rows)

	assets := tablesAfter(doc, "Assets")
	require.Len(t, assets, 1)
	assert.Empty(t, assets[0].Rows)
	assert.Equal(t, "None", assets[0].EmptyMessage)

	totals := tablesAfter(doc, "TOTALS SUMMARY")
	require.Len(t, totals, 1)
	v, ok := valueOf(totals[0], "Total Income (All)")
	require.True(t, ok)
	assert.Equal(t, "KES 1,000.00", v)
	v, _ = valueOf(totals[0], "Total Assets (All)")
	assert.Equal(t, "KES 0.00", v)

	overview := tablesAfter(doc, "DECLARATION OVERVIEW")
	require.Len(t, overview, 1)
	status, _ := valueOf(overview[0], "Status")
	assert.Equal(t, "Submitted", status)

	sig := tablesAfter(doc, "SIGNATURES")
	require.Len(t, sig, 1)
	w, _ := valueOf(sig[0], "Witness Information")
	assert.Equal(t, "No witness information provided.", w)

	last := doc.Blocks[len(doc.Blocks)-1]
	assert.Equal(t, BlockNote, last.Kind)
	assert.Equal(t, DefaultFooter, last.Text)
}

func TestCompose_NoSectionsStillHasTotals(t *testing.T) {
	doc := Compose(Input{Declaration: sampleDeclaration()}, Options{Protected: true, Organisation: "Test County"})

	assert.Equal(t, PasswordBanner, doc.Banner)
	assert.Equal(t, "Test County", doc.Subtitle)
	assert.Empty(t, tablesAfter(doc, "Income"))

	totals := tablesAfter(doc, "TOTALS SUMMARY")
	require.Len(t, totals, 1)
	for _, key := range []string{"Total Income (All)", "Total Assets (All)", "Total Liabilities (All)"} {
		v, ok := valueOf(totals[0], key)
		require.True(t, ok, key)
		assert.Equal(t, "KES 0.00", v)
	}
}

func TestCompose_MemberSectionsInOrder(t *testing.T) {
	d := sampleDeclaration()
	d.WitnessName = strp("John Doe")
	d.CorrectionMessage = strp("Please attach payslip")

	doc := Compose(Input{
		Declaration: d,
		Sections: []domain.MemberSection{
			{Kind: domain.MemberDeclarant, Name: "Amina Otieno", Note: "carried over", Holdings: domain.Holdings{
				Assets: []domain.LineItem{{Type: "Land", Description: "Plot", Value: 5e5, Extra: map[string]string{
					domain.ExtraLocation: "Kisauni", domain.ExtraSize: "2", domain.ExtraSizeUnit: "acres",
				}}},
			}},
			{Kind: domain.MemberSpouse, Ordinal: 1, Name: "Ali", Holdings: domain.Holdings{
				Liabilities: []domain.LineItem{{Type: "Other", Value: 10, Extra: map[string]string{
					domain.ExtraLiabilityOtherType: "Chama", domain.ExtraLiabilityOtherDescr: "monthly",
				}}},
			}},
			{Kind: domain.MemberChild, Ordinal: 1, Holdings: domain.Holdings{
				Incomes: []domain.LineItem{{Type: "Gift", Value: 1}},
			}},
		},
	}, Options{})

	var titles []string
	for _, b := range doc.Blocks {
		if b.Kind == BlockSection {
			titles = append(titles, b.Text)
		}
	}
	assert.Equal(t, []string{
		"DECLARATION OVERVIEW",
		"EMPLOYEE PROFILE",
		"FINANCIAL PERIOD",
		"FINANCIAL DECLARATION - DECLARANT (AMINA OTIENO)",
		"SPOUSE 1: ALI",
		"CHILD 1: UNNAMED",
		"TOTALS SUMMARY",
		"SIGNATURES",
	}, titles)

	assets := tablesAfter(doc, "Assets")
	require.Len(t, assets, 3)
	assert.Equal(t, "Plot (Location: Kisauni, Size: 2 acres)", assets[0].Rows[0][1])

	liabilities := tablesAfter(doc, "Liabilities")
	require.Len(t, liabilities, 3)
	assert.Equal(t, []string{"Chama", "Type: Chama, Details: monthly", "KES 10.00"}, liabilities[1].Rows[0])

	fields := tablesAfter(doc, "FINANCIAL DECLARATION - DECLARANT (AMINA OTIENO)")
	require.Len(t, fields, 1)
	note, ok := valueOf(fields[0], "Notes")
	assert.True(t, ok)
	assert.Equal(t, "carried over", note)

	overview := tablesAfter(doc, "DECLARATION OVERVIEW")
	msg, _ := valueOf(overview[0], "Correction Message")
	assert.Equal(t, "Please attach payslip", msg)

	sig := tablesAfter(doc, "SIGNATURES")
	name, _ := valueOf(sig[0], "Witness Name")
	assert.Equal(t, "John Doe", name)
	date, _ := valueOf(sig[0], "Witness Date")
	assert.Equal(t, "2024-07-01", date)
}

func TestCompose_LegacySpouseEntryKeepsItsDetails(t *testing.T) {
	doc := Compose(Input{
		Declaration: sampleDeclaration(),
		Sections: []domain.MemberSection{
			{Kind: domain.MemberSpouse, Ordinal: 1, Name: "Legacy Wife", Legacy: true,
				DeclarationDate: "2020-01-05", PeriodStart: "2018-01-01", PeriodEnd: "2019-12-31",
				Note: "from 2020 form",
				Holdings: domain.Holdings{Incomes: []domain.LineItem{{Type: "Shop", Value: 3}}},
			},
			{Kind: domain.MemberSpouse, Ordinal: 1, Name: "Current Wife", Holdings: domain.Holdings{
				Incomes: []domain.LineItem{{Type: "Salary", Value: 7}},
			}},
		},
	}, Options{})

	var titles []string
	for _, b := range doc.Blocks {
		if b.Kind == BlockSection {
			titles = append(titles, b.Text)
		}
	}
	assert.Contains(t, titles, "FINANCIAL DECLARATION - SPOUSE (LEGACY WIFE)")
	assert.Contains(t, titles, "SPOUSE 1: CURRENT WIFE")
	assert.NotContains(t, titles, "SPOUSE 1: LEGACY WIFE")

	fields := tablesAfter(doc, "FINANCIAL DECLARATION - SPOUSE (LEGACY WIFE)")
	require.Len(t, fields, 1)
	date, ok := valueOf(fields[0], "Declaration Date")
	assert.True(t, ok)
	assert.Equal(t, "2020-01-05", date)
	period, _ := valueOf(fields[0], "Period")
	assert.Equal(t, "2018-01-01 -> 2019-12-31", period)
	note, _ := valueOf(fields[0], "Notes")
	assert.Equal(t, "from 2020 form", note)

	assert.Empty(t, tablesAfter(doc, "SPOUSE 1: CURRENT WIFE"))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Submitted", StatusLabel("pending"))
	assert.Equal(t, "Requesting Clarification", StatusLabel("rejected"))
	assert.Equal(t, "approved", StatusLabel("approved"))
	assert.Equal(t, "pending", StatusLabel(""))
}
