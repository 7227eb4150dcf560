// Package reconcile decides which source of the declarant's financial data is
// authoritative and assembles the ordered member sections of a report.
package reconcile

import (
	"sort"
	"time"

	"dails-report/internal/domain"

	"github.com/goccy/go-json"
)

// LegacyEntry is a normalized row of the financial_declarations side table.
type LegacyEntry struct {
	ID              int64
	Kind            domain.MemberKind
	Name            string
	DeclarationDate string
	PeriodStart     string
	PeriodEnd       string
	Note            string
	CreatedAt       *time.Time

	domain.Holdings
}

// Member is a normalized spouse or child.
type Member struct {
	Kind domain.MemberKind
	Name string

	domain.Holdings
}

type Input struct {
	DeclarantName   string
	DeclarationDate string
	PeriodStart     string
	PeriodEnd       string

	Root     domain.Holdings
	Legacy   []LegacyEntry
	Spouses  []Member
	Children []Member
}

type Result struct {
	// Rule names the policy that produced Root.
	Rule     string
	Root     domain.Holdings
	Sections []domain.MemberSection
}

const (
	RuleRootComplete     = "root-complete"
	RulePromoteDeclarant = "promote-declarant"
	RuleFirstEntry       = "first-entry-fallback"
	RuleMergeDeclarant   = "merge-declarant"
	RuleRootAsIs         = "root-as-is"
)

type state struct {
	root    domain.Holdings
	entries []LegacyEntry

	// dates carried over from a promoted or merged declarant entry
	declDate    string
	periodStart string
	periodEnd   string
}

func (s *state) declarantEntries() []int {
	var idx []int
	for i, e := range s.entries {
		if e.Kind == domain.MemberDeclarant {
			idx = append(idx, i)
		}
	}
	return idx
}

type rule struct {
	name    string
	applies func(s *state) bool
	apply   func(s *state)
}

// rules are evaluated top-down; the first one that applies wins.
var rules = []rule{
	{
		name: RuleRootComplete,
		// a complete root yields to merging when declarant entries exist
		applies: func(s *state) bool {
			return s.root.Complete() && len(s.declarantEntries()) == 0
		},
		apply: func(*state) {},
	},
	{
		name: RulePromoteDeclarant,
		applies: func(s *state) bool {
			return s.root.Empty() && len(s.declarantEntries()) > 0
		},
		apply: func(s *state) {
			s.root = domain.Holdings{}
			absorbDeclarantEntries(s)
		},
	},
	{
		name: RuleFirstEntry,
		applies: func(s *state) bool {
			return s.root.Empty() && len(s.entries) > 0
		},
		apply: func(s *state) {
			first := s.entries[0]
			s.root = first.Holdings.Clone()
			s.declDate, s.periodStart, s.periodEnd = first.DeclarationDate, first.PeriodStart, first.PeriodEnd
		},
	},
	{
		name: RuleMergeDeclarant,
		applies: func(s *state) bool {
			return !s.root.Empty() && len(s.declarantEntries()) > 0
		},
		apply: absorbDeclarantEntries,
	},
	{
		name:    RuleRootAsIs,
		applies: func(*state) bool { return true },
		apply:   func(*state) {},
	},
}

// absorbDeclarantEntries unions every declarant entry into the root, in
// storage order, and drops those entries from the member list.
func absorbDeclarantEntries(s *state) {
	root := s.root.Clone()
	kept := s.entries[:0:0]
	for _, e := range s.entries {
		if e.Kind != domain.MemberDeclarant {
			kept = append(kept, e)
			continue
		}
		if root.Empty() {
			root = e.Holdings.Clone()
		} else {
			root.Incomes = union(root.Incomes, e.Incomes)
			root.Assets = union(root.Assets, e.Assets)
			root.Liabilities = union(root.Liabilities, e.Liabilities)
		}
		if s.declDate == "" {
			s.declDate = e.DeclarationDate
		}
		if s.periodStart == "" {
			s.periodStart = e.PeriodStart
		}
		if s.periodEnd == "" {
			s.periodEnd = e.PeriodEnd
		}
	}
	s.root = root
	s.entries = kept
}

// Resolve applies the source-of-truth policy and returns the member sections in
// render order: declarant, remaining legacy entries, spouses, children.
// Sections without any line item are left out.
func Resolve(in Input) Result {
	s := &state{
		root:    in.Root.Clone(),
		entries: SortLegacy(in.Legacy),
	}

	var applied string
	for _, r := range rules {
		if r.applies(s) {
			r.apply(s)
			applied = r.name
			break
		}
	}

	res := Result{Rule: applied, Root: s.root}

	declarant := domain.MemberSection{
		Kind:            domain.MemberDeclarant,
		Name:            in.DeclarantName,
		Ordinal:         1,
		DeclarationDate: firstNonEmpty(in.DeclarationDate, s.declDate),
		PeriodStart:     firstNonEmpty(in.PeriodStart, s.periodStart),
		PeriodEnd:       firstNonEmpty(in.PeriodEnd, s.periodEnd),
		Holdings:        s.root,
	}
	res.Sections = appendNonEmpty(res.Sections, declarant)

	ordinals := map[domain.MemberKind]int{}
	for _, e := range s.entries {
		ordinals[e.Kind]++
		res.Sections = appendNonEmpty(res.Sections, domain.MemberSection{
			Kind:            e.Kind,
			Name:            e.Name,
			Ordinal:         ordinals[e.Kind],
			DeclarationDate: e.DeclarationDate,
			PeriodStart:     e.PeriodStart,
			PeriodEnd:       e.PeriodEnd,
			Note:            e.Note,
			Legacy:          true,
			Holdings:        e.Holdings,
		})
	}

	for _, group := range [][]Member{in.Spouses, in.Children} {
		n := 0
		for _, m := range group {
			if m.Holdings.Empty() {
				continue
			}
			n++
			res.Sections = append(res.Sections, domain.MemberSection{
				Kind:     m.Kind,
				Name:     m.Name,
				Ordinal:  n,
				Holdings: m.Holdings,
			})
		}
	}

	return res
}

// SortLegacy orders entries by creation time, then id, so the fallback rule
// does not depend on whatever order storage returned rows in.
func SortLegacy(entries []LegacyEntry) []LegacyEntry {
	out := append([]LegacyEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func appendNonEmpty(sections []domain.MemberSection, s domain.MemberSection) []domain.MemberSection {
	if s.Holdings.Empty() {
		return sections
	}
	return append(sections, s)
}

// union appends the items of add that are not already in target. Items are
// compared by their full encoded form.
func union(target, add []domain.LineItem) []domain.LineItem {
	seen := make(map[string]struct{}, len(target)+len(add))
	for _, it := range target {
		seen[itemKey(it)] = struct{}{}
	}
	for _, it := range add {
		k := itemKey(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		target = append(target, it)
	}
	return target
}

func itemKey(it domain.LineItem) string {
	b, err := json.Marshal(it)
	if err != nil {
		return it.Type + "\x00" + it.Description
	}
	return string(b)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
