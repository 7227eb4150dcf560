package domain

type Category string

const (
	CategoryIncome    Category = "income"
	CategoryAsset     Category = "asset"
	CategoryLiability Category = "liability"
)

// ParseCategory reads a legacy item_type; anything unknown is treated as income.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryAsset, "assets":
		return CategoryAsset
	case CategoryLiability, "liabilities":
		return CategoryLiability
	default:
		return CategoryIncome
	}
}

func (c Category) Label() string {
	switch c {
	case CategoryAsset:
		return "Asset"
	case CategoryLiability:
		return "Liability"
	default:
		return "Income"
	}
}

// Extra field keys kept on asset and liability items.
const (
	ExtraMake                = "make"
	ExtraModel               = "model"
	ExtraLicenceNo           = "licence_no"
	ExtraTitleDeed           = "title_deed"
	ExtraLocation            = "location"
	ExtraSize                = "size"
	ExtraSizeUnit            = "size_unit"
	ExtraAssetOtherType      = "asset_other_type"
	ExtraLiabilityOtherType  = "liability_other_type"
	ExtraLiabilityOtherDescr = "liability_other_description"
)

// LineItem is the canonical form of one income, asset or liability entry.
// Value is always finite. Extra only carries keys that had a non-empty value.
type LineItem struct {
	Category    Category          `json:"category"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Value       float64           `json:"value"`
	Extra       map[string]string `json:"extra,omitempty"`
}

type Holdings struct {
	Incomes     []LineItem
	Assets      []LineItem
	Liabilities []LineItem
}

func (h Holdings) Empty() bool {
	return len(h.Incomes) == 0 && len(h.Assets) == 0 && len(h.Liabilities) == 0
}

// Complete reports whether every category has at least one item.
func (h Holdings) Complete() bool {
	return len(h.Incomes) > 0 && len(h.Assets) > 0 && len(h.Liabilities) > 0
}

func (h Holdings) Clone() Holdings {
	return Holdings{
		Incomes:     append([]LineItem(nil), h.Incomes...),
		Assets:      append([]LineItem(nil), h.Assets...),
		Liabilities: append([]LineItem(nil), h.Liabilities...),
	}
}

// MemberSection is one household member's financial block in the report.
type MemberSection struct {
	Kind    MemberKind
	Name    string
	Ordinal int // 1-based position among members of the same kind

	DeclarationDate string
	PeriodStart     string
	PeriodEnd       string
	Note            string

	// Legacy marks a section read from the financial_declarations side table.
	Legacy bool

	Holdings
}
