package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount as a whole-unit figure with space
// thousands grouping and a trailing currency code, e.g. "9 900 000 GNF".
// Guinean francs have no sub-unit so amounts round to the nearest integer.
func FormatCurrency(amount float64, code string) string {
	if code == "" {
		code = "GNF"
	}

	rounded := decimal.NewFromFloat(amount).Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(' ')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	b.WriteString(code)
	return b.String()
}
