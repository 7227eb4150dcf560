package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"dails-report/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const CurrencyPrefix = "KES"

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders v as "KES 1,234.56".
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	return CurrencyPrefix + " " + moneyPrinter.Sprintf("%.2f", rounded)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatDate normalizes timestamps, ISO strings and SQL datetime strings to
// YYYY-MM-DD. Values it cannot parse come back unchanged.
func FormatDate(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.DateOnly)
	case *time.Time:
		if t == nil {
			return ""
		}
		return FormatDate(*t)
	case *string:
		return FormatDate(domain.StrValue(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return ""
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				if layout == time.RFC3339Nano {
					return parsed.UTC().Format(time.DateOnly)
				}
				return parsed.Format(time.DateOnly)
			}
		}
		return s
	default:
		return fmt.Sprint(v)
	}
}

// Totals sums every category across all sections.
type Totals struct {
	Incomes     float64
	Assets      float64
	Liabilities float64
}

func ComputeTotals(sections []domain.MemberSection) Totals {
	var inc, ast, lia decimal.Decimal
	for _, s := range sections {
		inc = inc.Add(sum(s.Incomes))
		ast = ast.Add(sum(s.Assets))
		lia = lia.Add(sum(s.Liabilities))
	}
	return Totals{
		Incomes:     inc.InexactFloat64(),
		Assets:      ast.InexactFloat64(),
		Liabilities: lia.InexactFloat64(),
	}
}

func sum(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Value))
	}
	return total
}
