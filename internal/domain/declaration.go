package domain

import "time"

// Declaration is one declaration row joined with the owning user's profile.
// Financial fields are kept raw; their encoding changed several times over the
// life of the schema and is resolved by the normalize package.
type Declaration struct {
	ID     int64
	UserID int64

	DeclarationType   *string
	DeclarationDate   *string
	Status            *string
	CorrectionMessage *string
	MaritalStatus     *string

	SubmittedAt *time.Time
	CreatedAt   *time.Time
	UpdatedAt   *time.Time

	PeriodStart *string
	PeriodEnd   *string

	BiennialIncome []byte
	Assets         []byte
	Liabilities    []byte

	WitnessName    *string
	WitnessPhone   *string
	WitnessAddress *string

	FirstName          *string
	OtherNames         *string
	Surname            *string
	Email              *string
	NationalID         *string
	PayrollNumber      *string
	Department         *string
	Designation        *string
	UserMaritalStatus  *string
	Birthdate          *time.Time
	PlaceOfBirth       *string
	PostalAddress      *string
	PhysicalAddress    *string
	NatureOfEmployment *string
}

func (d Declaration) NationalIDValue() string {
	return StrValue(d.NationalID)
}

// StrValue dereferences an optional column, treating NULL as empty.
func StrValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
