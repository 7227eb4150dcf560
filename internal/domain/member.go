package domain

import (
	"strings"
	"time"
)

type MemberKind string

const (
	MemberDeclarant MemberKind = "declarant"
	MemberSpouse    MemberKind = "spouse"
	MemberChild     MemberKind = "child"
)

// ParseMemberKind maps the member_type values found in legacy rows onto a kind.
// Older rows used "user" and "self" for the declarant.
func ParseMemberKind(s string) MemberKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "declarant", "user", "self":
		return MemberDeclarant
	case "spouse":
		return MemberSpouse
	case "child":
		return MemberChild
	default:
		return MemberKind(strings.ToLower(strings.TrimSpace(s)))
	}
}

// HouseholdMember is a spouse or child row attached to a declaration.
type HouseholdMember struct {
	Kind MemberKind

	FirstName  *string
	OtherNames *string
	Surname    *string
	FullName   *string

	BiennialIncome []byte
	Assets         []byte
	Liabilities    []byte
}

// DisplayName prefers the name parts and falls back to a precomposed full name.
func (m HouseholdMember) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{m.FirstName, m.OtherNames, m.Surname} {
		if v := strings.TrimSpace(StrValue(p)); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return strings.TrimSpace(StrValue(m.FullName))
}

// LegacyDeclaration is a row of the financial_declarations side table.
type LegacyDeclaration struct {
	ID              int64
	DeclarationID   int64
	MemberType      string
	MemberName      *string
	DeclarationDate *string
	PeriodStart     *string
	PeriodEnd       *string
	Note            *string
	CreatedAt       *time.Time

	Items []LegacyItem
}

type LegacyItem struct {
	ID                     int64
	FinancialDeclarationID int64
	ItemType               string
	Description            *string
	Value                  *float64
}

// Bundle is everything the report needs for one declaration.
type Bundle struct {
	Declaration Declaration
	Spouses     []HouseholdMember
	Children    []HouseholdMember
	Legacy      []LegacyDeclaration
}
