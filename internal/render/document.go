package render

import (
	"fmt"
	"strconv"
	"strings"

	"dails-report/internal/domain"
)

const (
	DefaultTitle        = "DECLARATION OF INCOME, ASSETS AND LIABILITIES"
	DefaultOrganisation = "County Government of Mombasa"
	DefaultFooter       = "Generated by Mombasa County DAILs Portal - retain for your records."
	PasswordBanner      = "This PDF is password protected. The password is Your National ID number."
	EmptyTableMessage   = "None"
)

type BlockKind int

const (
	BlockSection BlockKind = iota
	BlockCaption
	BlockTable
	BlockNote
)

type Table struct {
	Header       []string
	Rows         [][]string
	EmptyMessage string
	Zebra        bool
}

type Block struct {
	Kind  BlockKind
	Text  string
	Table *Table
}

// Document is the drawing-independent content of a report.
type Document struct {
	Title    string
	Subtitle string
	Banner   string
	Blocks   []Block
	Totals   Totals
}

// Tables returns every table in order; handy for renderers and tests.
func (d Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.Blocks {
		if b.Kind == BlockTable {
			out = append(out, b.Table)
		}
	}
	return out
}

type Options struct {
	Organisation string
	Footer       string
	// Protected adds the password banner to the page header.
	Protected bool
}

type Input struct {
	Declaration domain.Declaration
	Sections    []domain.MemberSection
}

// Compose lays out the report content: overview, profile, period, one block
// per member section, totals and signatures.
func Compose(in Input, opts Options) Document {
	if opts.Organisation == "" {
		opts.Organisation = DefaultOrganisation
	}
	if opts.Footer == "" {
		opts.Footer = DefaultFooter
	}

	d := in.Declaration
	doc := Document{
		Title:    DefaultTitle,
		Subtitle: opts.Organisation,
	}
	if opts.Protected {
		doc.Banner = PasswordBanner
	}

	b := &builder{doc: &doc}

	b.section("Declaration Overview")
	overview := [][]string{
		{"Declaration ID", strconv.FormatInt(d.ID, 10)},
		{"Declaration Type", domain.StrValue(d.DeclarationType)},
		{"Submitted At", firstNonEmpty(FormatDate(d.SubmittedAt), FormatDate(d.CreatedAt))},
		{"Status", StatusLabel(domain.StrValue(d.Status))},
	}
	if msg := strings.TrimSpace(domain.StrValue(d.CorrectionMessage)); msg != "" {
		overview = append(overview, []string{"Correction Message", msg})
	}
	b.keyValues("Field", overview)

	b.section("Employee Profile")
	b.keyValues("Field", [][]string{
		{"Name", joinNonEmpty(", ", d.Surname, d.FirstName, d.OtherNames)},
		{"National ID", domain.StrValue(d.NationalID)},
		{"Payroll Number", domain.StrValue(d.PayrollNumber)},
		{"Department", domain.StrValue(d.Department)},
		{"Designation", domain.StrValue(d.Designation)},
		{"Marital Status", firstNonEmpty(domain.StrValue(d.MaritalStatus), domain.StrValue(d.UserMaritalStatus))},
		{"Birthdate", FormatDate(d.Birthdate)},
		{"Place of Birth", domain.StrValue(d.PlaceOfBirth)},
		{"Email", domain.StrValue(d.Email)},
		{"Postal Address", domain.StrValue(d.PostalAddress)},
		{"Physical Address", domain.StrValue(d.PhysicalAddress)},
		{"Nature of Employment", domain.StrValue(d.NatureOfEmployment)},
	})

	var firstStart, firstEnd, declarantDate string
	for _, s := range in.Sections {
		if firstStart == "" {
			firstStart = s.PeriodStart
		}
		if firstEnd == "" {
			firstEnd = s.PeriodEnd
		}
		if declarantDate == "" && s.Kind == domain.MemberDeclarant {
			declarantDate = s.DeclarationDate
		}
	}

	b.section("Financial Period")
	b.keyValues("Field", [][]string{
		{"Period Start", FormatDate(firstNonEmpty(domain.StrValue(d.PeriodStart), firstStart))},
		{"Period End", FormatDate(firstNonEmpty(domain.StrValue(d.PeriodEnd), firstEnd))},
	})

	for _, s := range in.Sections {
		b.member(s)
	}

	doc.Totals = ComputeTotals(in.Sections)
	b.section("Totals Summary")
	b.keyValues("Metric", [][]string{
		{"Total Income (All)", FormatMoney(doc.Totals.Incomes)},
		{"Total Assets (All)", FormatMoney(doc.Totals.Assets)},
		{"Total Liabilities (All)", FormatMoney(doc.Totals.Liabilities)},
	})

	declDate := FormatDate(firstNonEmpty(domain.StrValue(d.DeclarationDate), declarantDate))
	if declDate == "" && len(in.Sections) > 0 {
		declDate = FormatDate(in.Sections[0].DeclarationDate)
	}
	signatures := [][]string{
		{"Declarant Signature", "Signed"},
		{"Declarant Date", declDate},
	}
	wName, wPhone, wAddr := domain.StrValue(d.WitnessName), domain.StrValue(d.WitnessPhone), domain.StrValue(d.WitnessAddress)
	if wName != "" || wPhone != "" || wAddr != "" {
		signatures = append(signatures,
			[]string{"Witness Name", wName},
			[]string{"Witness Phone", wPhone},
			[]string{"Witness Address", wAddr},
			[]string{"Witness Signature", "Informed"},
			[]string{"Witness Date", declDate},
		)
	} else {
		signatures = append(signatures, []string{"Witness Information", "No witness information provided."})
	}
	b.section("Signatures")
	b.keyValues("Field", signatures)

	doc.Blocks = append(doc.Blocks, Block{Kind: BlockNote, Text: opts.Footer})

	return doc
}

// StatusLabel maps stored statuses to the wording shown to declarants.
func StatusLabel(status string) string {
	switch status {
	case "pending":
		return "Submitted"
	case "rejected":
		return "Requesting Clarification"
	case "":
		return "pending"
	default:
		return status
	}
}

// detailed reports whether a section is a financial declaration entry, with
// its own date, period and notes, rather than a spouse or child row.
func detailed(s domain.MemberSection) bool {
	return s.Legacy || (s.Kind != domain.MemberSpouse && s.Kind != domain.MemberChild)
}

// SectionTitle names a member block.
func SectionTitle(s domain.MemberSection) string {
	name := s.Name
	if detailed(s) {
		kind := strings.ToUpper(string(s.Kind))
		if kind == "" {
			kind = "MEMBER"
		}
		if name == "" {
			return "Financial Declaration - " + kind
		}
		return fmt.Sprintf("Financial Declaration - %s (%s)", kind, name)
	}
	switch s.Kind {
	case domain.MemberSpouse:
		if name == "" {
			name = "Unnamed"
		}
		return fmt.Sprintf("Spouse %d: %s", s.Ordinal, name)
	case domain.MemberChild:
		if name == "" {
			name = "Unnamed"
		}
		return fmt.Sprintf("Child %d: %s", s.Ordinal, name)
	}
	return name
}

type builder struct {
	doc *Document
}

func (b *builder) section(title string) {
	b.doc.Blocks = append(b.doc.Blocks, Block{Kind: BlockSection, Text: strings.ToUpper(title)})
}

func (b *builder) caption(text string) {
	b.doc.Blocks = append(b.doc.Blocks, Block{Kind: BlockCaption, Text: text})
}

func (b *builder) table(t *Table) {
	if t.EmptyMessage == "" {
		t.EmptyMessage = EmptyTableMessage
	}
	b.doc.Blocks = append(b.doc.Blocks, Block{Kind: BlockTable, Table: t})
}

func (b *builder) keyValues(label string, pairs [][]string) {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		if len(p) == 2 {
			rows = append(rows, p)
		}
	}
	b.table(&Table{Header: []string{label, "Value"}, Rows: rows, Zebra: true})
}

func (b *builder) member(s domain.MemberSection) {
	b.section(SectionTitle(s))

	if detailed(s) {
		meta := [][]string{
			{"Declaration Date", FormatDate(s.DeclarationDate)},
			{"Period", FormatDate(s.PeriodStart) + " -> " + FormatDate(s.PeriodEnd)},
		}
		if note := strings.TrimSpace(s.Note); note != "" {
			meta = append(meta, []string{"Notes", note})
		}
		b.keyValues("Field", meta)
	}

	b.caption("Income")
	b.table(&Table{Header: itemHeader(), Rows: incomeRows(s.Incomes), Zebra: true})
	b.caption("Assets")
	b.table(&Table{Header: itemHeader(), Rows: assetRows(s.Assets), Zebra: true})
	b.caption("Liabilities")
	b.table(&Table{Header: itemHeader(), Rows: liabilityRows(s.Liabilities), Zebra: true})
}

func itemHeader() []string {
	return []string{"Type", "Description", "Value"}
}

func incomeRows(items []domain.LineItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Type, it.Description, FormatMoney(it.Value)})
	}
	return rows
}

func assetRows(items []domain.LineItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		typ := it.Type
		if other := it.Extra[domain.ExtraAssetOtherType]; typ == "Other" && other != "" {
			typ = other
		}
		rows = append(rows, []string{typ, AssetDescription(it), FormatMoney(it.Value)})
	}
	return rows
}

func liabilityRows(items []domain.LineItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		typ := it.Type
		if other := it.Extra[domain.ExtraLiabilityOtherType]; typ == "Other" && other != "" {
			typ = other
		}
		rows = append(rows, []string{typ, LiabilityDescription(it), FormatMoney(it.Value)})
	}
	return rows
}

// AssetDescription appends the asset's identifying details to its description.
func AssetDescription(it domain.LineItem) string {
	var parts []string
	add := func(label, key string) {
		if v := it.Extra[key]; v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("Make", domain.ExtraMake)
	add("Model", domain.ExtraModel)
	add("Licence", domain.ExtraLicenceNo)
	add("Title Deed", domain.ExtraTitleDeed)
	add("Location", domain.ExtraLocation)
	if size := it.Extra[domain.ExtraSize]; it.Type == "Land" && size != "" {
		if unit := it.Extra[domain.ExtraSizeUnit]; unit != "" {
			size += " " + unit
		}
		parts = append(parts, "Size: "+size)
	}
	if other := it.Extra[domain.ExtraAssetOtherType]; it.Type == "Other" && other != "" {
		parts = append(parts, "Type: "+other)
	}
	return withDetails(it.Description, parts)
}

func LiabilityDescription(it domain.LineItem) string {
	var parts []string
	if other := it.Extra[domain.ExtraLiabilityOtherType]; it.Type == "Other" && other != "" {
		parts = append(parts, "Type: "+other)
	}
	if d := it.Extra[domain.ExtraLiabilityOtherDescr]; d != "" {
		parts = append(parts, "Details: "+d)
	}
	return withDetails(it.Description, parts)
}

func withDetails(base string, parts []string) string {
	base = strings.TrimSpace(base)
	extra := strings.Join(parts, ", ")
	switch {
	case base != "" && extra != "":
		return base + " (" + extra + ")"
	case base != "":
		return base
	default:
		return extra
	}
}

func joinNonEmpty(sep string, parts ...*string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(domain.StrValue(p)); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
