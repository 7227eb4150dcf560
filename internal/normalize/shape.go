// Package normalize turns the financial fields of declaration, spouse, child and
// legacy rows into canonical line items. Every historical encoding is detected
// by an ordered table of predicates; the first match decides how the value is
// expanded. Unrecognised values expand to nothing.
package normalize

import (
	"regexp"
	"strings"

	"dails-report/internal/domain"

	"github.com/goccy/go-json"
)

type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeNull
	ShapeSequence
	ShapeBareNumber
	ShapeJSONString
	ShapePipeString
	ShapeIndexedObject
	ShapeSingleItem
	ShapeWrapper
)

var shapeNames = map[Shape]string{
	ShapeUnknown:       "unknown",
	ShapeNull:          "null",
	ShapeSequence:      "sequence",
	ShapeBareNumber:    "bare-number",
	ShapeJSONString:    "json-string",
	ShapePipeString:    "pipe-string",
	ShapeIndexedObject: "indexed-object",
	ShapeSingleItem:    "single-item",
	ShapeWrapper:       "wrapper",
}

func (s Shape) String() string {
	return shapeNames[s]
}

// wrapperKeys are flattened in this order.
var wrapperKeys = []string{"biennial_income", "income", "assets", "liabilities", "items"}

var (
	bareNumberRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	digitKeyRe   = regexp.MustCompile(`^\d+$`)
)

type detector struct {
	shape Shape
	match func(v any, c domain.Category) bool
}

// Order matters: the bare numeric income total has to win over the JSON
// string check, because "1000" is also valid JSON.
var detectors = []detector{
	{ShapeNull, func(v any, _ domain.Category) bool { return v == nil }},
	{ShapeSequence, func(v any, _ domain.Category) bool {
		_, ok := v.([]any)
		return ok
	}},
	{ShapeBareNumber, func(v any, c domain.Category) bool {
		s, ok := v.(string)
		return ok && c == domain.CategoryIncome && bareNumberRe.MatchString(strings.TrimSpace(s))
	}},
	{ShapeJSONString, func(v any, _ domain.Category) bool {
		s, ok := v.(string)
		return ok && strings.TrimSpace(s) != "" && json.Valid([]byte(s))
	}},
	{ShapePipeString, func(v any, _ domain.Category) bool {
		s, ok := v.(string)
		return ok && strings.Contains(s, "|")
	}},
	{ShapeIndexedObject, func(v any, _ domain.Category) bool {
		m, ok := v.(map[string]any)
		if !ok || len(m) == 0 {
			return false
		}
		for k := range m {
			if !digitKeyRe.MatchString(k) {
				return false
			}
		}
		return true
	}},
	{ShapeSingleItem, func(v any, _ domain.Category) bool {
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		for _, k := range []string{"type", "description", "value"} {
			if _, has := m[k]; has {
				return true
			}
		}
		return false
	}},
	{ShapeWrapper, func(v any, _ domain.Category) bool {
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		for _, k := range wrapperKeys {
			if _, isSeq := m[k].([]any); isSeq {
				return true
			}
		}
		return false
	}},
}

// Classify reports which encoding v uses for category c.
func Classify(v any, c domain.Category) Shape {
	v = fromBytes(v)
	for _, d := range detectors {
		if d.match(v, c) {
			return d.shape
		}
	}
	return ShapeUnknown
}

func fromBytes(v any) any {
	if b, ok := v.([]byte); ok {
		if b == nil {
			return nil
		}
		return string(b)
	}
	return v
}
