package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"dails-report/internal/domain"

	"github.com/goccy/go-json"
)

// maxDepth bounds re-encoded JSON nesting.
const maxDepth = 8

// Field expands one raw financial field into line items of category c.
// It never fails: anything it cannot read yields an empty slice.
func Field(raw any, c domain.Category) []domain.LineItem {
	items := expand(raw, c, 0)
	if items == nil {
		return []domain.LineItem{}
	}
	return items
}

// Holdings normalizes the three financial fields of one row.
func Holdings(income, assets, liabilities any) domain.Holdings {
	return domain.Holdings{
		Incomes:     Field(income, domain.CategoryIncome),
		Assets:      Field(assets, domain.CategoryAsset),
		Liabilities: Field(liabilities, domain.CategoryLiability),
	}
}

// Legacy converts side-table items into holdings, keeping item order.
func Legacy(items []domain.LegacyItem) domain.Holdings {
	h := domain.Holdings{
		Incomes:     []domain.LineItem{},
		Assets:      []domain.LineItem{},
		Liabilities: []domain.LineItem{},
	}
	for _, it := range items {
		rec := map[string]any{"description": domain.StrValue(it.Description)}
		if it.Value != nil {
			rec["value"] = *it.Value
		}
		c := domain.ParseCategory(strings.ToLower(strings.TrimSpace(it.ItemType)))
		li := Item(rec, c)
		switch c {
		case domain.CategoryAsset:
			h.Assets = append(h.Assets, li)
		case domain.CategoryLiability:
			h.Liabilities = append(h.Liabilities, li)
		default:
			h.Incomes = append(h.Incomes, li)
		}
	}
	return h
}

func expand(v any, c domain.Category, depth int) []domain.LineItem {
	if depth > maxDepth {
		return nil
	}
	v = fromBytes(v)

	switch Classify(v, c) {
	case ShapeSequence:
		return fromSequence(v.([]any), c)

	case ShapeBareNumber:
		return []domain.LineItem{{
			Category:    domain.CategoryIncome,
			Type:        "Income",
			Description: "Biennial Income",
			Value:       toFloat(strings.TrimSpace(v.(string))),
		}}

	case ShapeJSONString:
		var parsed any
		if err := json.Unmarshal([]byte(v.(string)), &parsed); err != nil {
			return nil
		}
		return expand(parsed, c, depth+1)

	case ShapePipeString:
		return fromPipes(v.(string), c)

	case ShapeIndexedObject:
		m := v.(map[string]any)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.ParseUint(keys[i], 10, 64)
			b, errB := strconv.ParseUint(keys[j], 10, 64)
			if errA != nil || errB != nil || a == b {
				return keys[i] < keys[j]
			}
			return a < b
		})
		seq := make([]any, 0, len(keys))
		for _, k := range keys {
			seq = append(seq, m[k])
		}
		return expand(seq, c, depth+1)

	case ShapeSingleItem:
		return []domain.LineItem{Item(v.(map[string]any), c)}

	case ShapeWrapper:
		m := v.(map[string]any)
		var flat []any
		for _, k := range wrapperKeys {
			if seq, ok := m[k].([]any); ok {
				flat = append(flat, seq...)
			}
		}
		return expand(flat, c, depth+1)
	}

	return nil
}

func fromSequence(seq []any, c domain.Category) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(seq))
	for _, el := range seq {
		rec, ok := el.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Item(rec, c))
	}
	return out
}

// fromPipes reads the oldest encoding: "type|description|value;type|...".
func fromPipes(s string, c domain.Category) []domain.LineItem {
	var out []domain.LineItem
	for _, seg := range strings.Split(s, ";") {
		parts := strings.Split(seg, "|")
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		typ := strings.TrimSpace(parts[0])
		desc := strings.TrimSpace(parts[1])
		val := toFloat(strings.TrimSpace(parts[2]))
		if typ == "" && desc == "" && val == 0 {
			continue
		}
		out = append(out, Item(map[string]any{
			"type":        typ,
			"description": desc,
			"value":       val,
		}, c))
	}
	return out
}

// Item maps one decoded record onto a line item, applying field aliases and
// defaults.
func Item(rec map[string]any, c domain.Category) domain.LineItem {
	desc := firstString(rec, "description", "details")

	typ := firstString(rec, "type", "item_type", typeAlias(c))
	if typ == "" {
		typ = desc
	}
	if typ == "" {
		typ = c.Label()
	}

	var value float64
	if v, ok := rec["value"]; ok && v != nil {
		value = toFloat(v)
	} else {
		value = toFloat(rec["amount"])
	}

	li := domain.LineItem{
		Category:    c,
		Type:        typ,
		Description: desc,
		Value:       value,
	}

	for _, k := range extraKeys(c) {
		if s := stringify(rec[k]); s != "" {
			if li.Extra == nil {
				li.Extra = make(map[string]string)
			}
			li.Extra[k] = s
		}
	}

	return li
}

func typeAlias(c domain.Category) string {
	switch c {
	case domain.CategoryAsset:
		return "asset_type"
	case domain.CategoryLiability:
		return "liability_type"
	default:
		return "income_type"
	}
}

func extraKeys(c domain.Category) []string {
	switch c {
	case domain.CategoryAsset:
		return []string{
			domain.ExtraMake,
			domain.ExtraModel,
			domain.ExtraLicenceNo,
			domain.ExtraTitleDeed,
			domain.ExtraLocation,
			domain.ExtraSize,
			domain.ExtraSizeUnit,
			domain.ExtraAssetOtherType,
		}
	case domain.CategoryLiability:
		return []string{
			domain.ExtraLiabilityOtherType,
			domain.ExtraLiabilityOtherDescr,
		}
	default:
		return nil
	}
}

func firstString(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringify(rec[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// toFloat coerces numeric-like input; anything else, and any non-finite
// result, becomes 0.
func toFloat(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return 0
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = p
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
