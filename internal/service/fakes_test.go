package service

import (
	"context"

	"dails-report/internal/domain"
)

type fakeReader struct {
	decl      domain.Declaration
	declErr   error
	spouses   []domain.HouseholdMember
	spouseErr error
	children  []domain.HouseholdMember
	legacy    []domain.LegacyDeclaration
	items     []domain.LegacyItem
	itemsErr  error
}

func (f *fakeReader) FindByID(context.Context, int64) (domain.Declaration, error) {
	return f.decl, f.declErr
}

func (f *fakeReader) ListSpouses(context.Context, int64) ([]domain.HouseholdMember, error) {
	return f.spouses, f.spouseErr
}

func (f *fakeReader) ListChildren(context.Context, int64) ([]domain.HouseholdMember, error) {
	return f.children, nil
}

func (f *fakeReader) ListLegacy(context.Context, int64) ([]domain.LegacyDeclaration, error) {
	return f.legacy, nil
}

func (f *fakeReader) ListLegacyItems(context.Context, int64) ([]domain.LegacyItem, error) {
	return f.items, f.itemsErr
}

func strp(s string) *string { return &s }

func f64p(v float64) *float64 { return &v }

func sampleDeclaration(nationalID string) domain.Declaration {
	d := domain.Declaration{
		ID:              42,
		UserID:          7,
		DeclarationType: strp("biennial"),
		DeclarationDate: strp("2024-07-01"),
		Status:          strp("pending"),
		PeriodStart:     strp("2022-07-01"),
		PeriodEnd:       strp("2024-06-30"),
		FirstName:       strp("Amina"),
		Surname:         strp("Otieno"),
		BiennialIncome:  []byte(`[{"type":"Salary","description":"Net","value":"1000"}]`),
		Assets:          []byte(`"50000"`),
	}
	if nationalID != "" {
		d.NationalID = strp(nationalID)
	}
	return d
}
