package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// FormatAmount renders an amount rounded to the currency unit with digit grouping: 1234567.4 -> "1,234,567".
func FormatAmount(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.Round(0).IntPart())
}

// FormatQuantity renders a quantity or area with at most 2 decimals: 2.7 -> "2.7", 1234.567 -> "1,234.57".
func FormatQuantity(d decimal.Decimal) string {
	d = d.Round(2)
	if d.Equal(d.Truncate(0)) {
		return printer.Sprintf("%d", d.IntPart())
	}
	f, _ := d.Float64()
	if d.Mul(decimal.NewFromInt(10)).Equal(d.Mul(decimal.NewFromInt(10)).Truncate(0)) {
		return printer.Sprintf("%.1f", f)
	}
	return printer.Sprintf("%.2f", f)
}
