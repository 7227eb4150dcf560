package normalize

import (
	"testing"

	"dails-report/internal/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salaryItem() domain.LineItem {
	return domain.LineItem{
		Category:    domain.CategoryIncome,
		Type:        "Salary",
		Description: "Net",
		Value:       1000,
	}
}

func TestField_RecognizedShapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		shape Shape
		want  []domain.LineItem
	}{
		{
			name:  "object sequence",
			raw:   []any{map[string]any{"type": "Salary", "description": "Net", "value": "1000"}},
			shape: ShapeSequence,
			want:  []domain.LineItem{salaryItem()},
		},
		{
			name:  "json string",
			raw:   `[{"type":"Salary","description":"Net","value":"1000"}]`,
			shape: ShapeJSONString,
			want:  []domain.LineItem{salaryItem()},
		},
		{
			name:  "doubly encoded json string",
			raw:   `"[{\"type\":\"Salary\",\"description\":\"Net\",\"value\":1000}]"`,
			shape: ShapeJSONString,
			want:  []domain.LineItem{salaryItem()},
		},
		{
			name:  "raw bytes",
			raw:   []byte(`[{"type":"Salary","description":"Net","value":1000}]`),
			shape: ShapeJSONString,
			want:  []domain.LineItem{salaryItem()},
		},
		{
			name:  "pipe and semicolon string",
			raw:   "Salary|Net|1000;||;Rent|Flat|250.5",
			shape: ShapePipeString,
			want: []domain.LineItem{
				salaryItem(),
				{Category: domain.CategoryIncome, Type: "Rent", Description: "Flat", Value: 250.5},
			},
		},
		{
			name:  "bare numeric income total",
			raw:   " 1500.25 ",
			shape: ShapeBareNumber,
			want: []domain.LineItem{
				{Category: domain.CategoryIncome, Type: "Income", Description: "Biennial Income", Value: 1500.25},
			},
		},
		{
			name: "digit keyed object",
			raw: map[string]any{
				"10": map[string]any{"type": "B", "value": 2},
				"2":  map[string]any{"type": "A", "value": 1},
			},
			shape: ShapeIndexedObject,
			want: []domain.LineItem{
				{Category: domain.CategoryIncome, Type: "A", Value: 1},
				{Category: domain.CategoryIncome, Type: "B", Value: 2},
			},
		},
		{
			name:  "single item object",
			raw:   map[string]any{"description": "Consulting", "value": 300},
			shape: ShapeSingleItem,
			want: []domain.LineItem{
				{Category: domain.CategoryIncome, Type: "Consulting", Description: "Consulting", Value: 300},
			},
		},
		{
			name: "named array wrapper",
			raw: map[string]any{
				"items":           []any{map[string]any{"type": "C", "value": 3}},
				"biennial_income": []any{map[string]any{"type": "A", "value": 1}},
				"income":          []any{map[string]any{"type": "B", "value": 2}},
			},
			shape: ShapeWrapper,
			want: []domain.LineItem{
				{Category: domain.CategoryIncome, Type: "A", Value: 1},
				{Category: domain.CategoryIncome, Type: "B", Value: 2},
				{Category: domain.CategoryIncome, Type: "C", Value: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shape, Classify(tt.raw, domain.CategoryIncome))
			assert.Equal(t, tt.want, Field(tt.raw, domain.CategoryIncome))
		})
	}
}

func TestField_StableUnderReserialization(t *testing.T) {
	inputs := []any{
		[]any{map[string]any{"type": "Salary", "description": "Net", "value": "1000"}},
		`[{"type":"Salary","description":"Net","value":"1000"}]`,
		`"[{\"type\":\"Salary\",\"value\":1000}]"`,
		"Salary|Net|1000;Rent|Flat|20",
		"1000",
		map[string]any{"0": map[string]any{"type": "A", "value": 1}, "1": map[string]any{"type": "B"}},
		map[string]any{"type": "Land", "value": 10, "title_deed": "MN/1"},
		map[string]any{"assets": []any{map[string]any{"type": "Car", "make": "Toyota"}}},
	}

	for _, c := range []domain.Category{domain.CategoryIncome, domain.CategoryAsset, domain.CategoryLiability} {
		for _, in := range inputs {
			encoded, err := json.Marshal(in)
			require.NoError(t, err)
			assert.Equal(t, Field(in, c), Field(string(encoded), c), "category %s input %v", c, in)
		}
	}
}

func TestField_UnrecognizedIsEmpty(t *testing.T) {
	var nilBytes []byte
	inputs := []any{nil, nilBytes, map[string]any{}, "", "   ", "not json at all", "{broken", 42.0, true, "null"}

	for _, in := range inputs {
		for _, c := range []domain.Category{domain.CategoryIncome, domain.CategoryAsset, domain.CategoryLiability} {
			got := Field(in, c)
			assert.NotNil(t, got)
			assert.Empty(t, got, "input %#v category %s", in, c)
		}
	}
}

func TestField_BareNumberOnlyForIncome(t *testing.T) {
	assert.Len(t, Field("50000", domain.CategoryIncome), 1)
	assert.Empty(t, Field("50000", domain.CategoryAsset))
	assert.Empty(t, Field("50000", domain.CategoryLiability))
}

func TestItem_DefaultsAndAliases(t *testing.T) {
	li := Item(map[string]any{"item_type": "Shares", "details": "NSE", "amount": "12.5"}, domain.CategoryAsset)
	assert.Equal(t, "Shares", li.Type)
	assert.Equal(t, "NSE", li.Description)
	assert.Equal(t, 12.5, li.Value)

	li = Item(map[string]any{}, domain.CategoryLiability)
	assert.Equal(t, "Liability", li.Type)
	assert.Equal(t, "", li.Description)
	assert.Zero(t, li.Value)
	assert.Nil(t, li.Extra)

	li = Item(map[string]any{"type": "Loan", "value": "lots"}, domain.CategoryLiability)
	assert.Zero(t, li.Value)
}

func TestItem_KeepsOnlyPresentExtras(t *testing.T) {
	li := Item(map[string]any{
		"type":       "Vehicle",
		"make":       "Toyota",
		"model":      nil,
		"licence_no": "",
		"location":   "Mombasa",
		"size":       2.5,
	}, domain.CategoryAsset)

	assert.Equal(t, map[string]string{"make": "Toyota", "location": "Mombasa", "size": "2.5"}, li.Extra)

	liab := Item(map[string]any{
		"type":                        "Other",
		"liability_other_type":        "Sacco",
		"liability_other_description": "Welfare loan",
		"make":                        "ignored",
	}, domain.CategoryLiability)
	assert.Equal(t, map[string]string{
		"liability_other_type":        "Sacco",
		"liability_other_description": "Welfare loan",
	}, liab.Extra)

	income := Item(map[string]any{"type": "Salary", "make": "ignored"}, domain.CategoryIncome)
	assert.Nil(t, income.Extra)
}

func TestLegacy_SplitsByItemType(t *testing.T) {
	v1, v2, v3 := 100.0, 2000.0, 50.0
	h := Legacy([]domain.LegacyItem{
		{ItemType: "income", Description: strPtr("Salary"), Value: &v1},
		{ItemType: "ASSET", Description: strPtr("Plot"), Value: &v2},
		{ItemType: "liability", Description: strPtr("Loan"), Value: &v3},
		{ItemType: "bonus", Description: strPtr("Gift")},
	})

	require.Len(t, h.Incomes, 2)
	assert.Equal(t, "Salary", h.Incomes[0].Type)
	assert.Equal(t, "Gift", h.Incomes[1].Description)
	assert.Zero(t, h.Incomes[1].Value)
	require.Len(t, h.Assets, 1)
	assert.Equal(t, 2000.0, h.Assets[0].Value)
	require.Len(t, h.Liabilities, 1)
	assert.Equal(t, domain.CategoryLiability, h.Liabilities[0].Category)
}

func strPtr(s string) *string { return &s }
