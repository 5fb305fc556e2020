// Package pricing holds the arithmetic used to price quote lines and quotes.
// All amounts are exact decimals; only VAT is rounded (to the currency unit).
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CalcType selects the line total formula.
type CalcType string

const (
	Unit CalcType = "unit" // unit_price × quantity
	Area CalcType = "m2"   // unit_price × area_m2 × quantity
	Char CalcType = "char" // unit_price × char_count × quantity
)

var CalcTypes = []CalcType{Unit, Area, Char}

// ParseCalcType reports whether s names a known calculation mode.
func ParseCalcType(s string) (CalcType, bool) {
	for _, ct := range CalcTypes {
		if string(ct) == s {
			return ct, true
		}
	}
	return "", false
}

// NormalizeCalcType coerces unknown or empty modes to Unit.
func NormalizeCalcType(s string) CalcType {
	if ct, ok := ParseCalcType(s); ok {
		return ct
	}
	return Unit
}

// UnitType is the billing unit of a finishing option.
type UnitType string

const (
	Each        UnitType = "ea"
	Meter       UnitType = "m"
	SquareMeter UnitType = "m2"
)

var UnitTypes = []UnitType{Each, Meter, SquareMeter}

func ParseUnitType(s string) (UnitType, bool) {
	for _, ut := range UnitTypes {
		if string(ut) == s {
			return ut, true
		}
	}
	return "", false
}

// NormalizeUnitType coerces unknown or empty units to Each.
func NormalizeUnitType(s string) UnitType {
	if ut, ok := ParseUnitType(s); ok {
		return ut
	}
	return Each
}

var (
	DefaultVATRate = decimal.NewFromFloat(0.1)

	thousand = decimal.NewFromInt(1000)
	two      = decimal.NewFromInt(2)
)

// Line is the pricing input of a single quote line.
type Line struct {
	CalcType  CalcType
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
	WidthMM   decimal.Decimal
	HeightMM  decimal.Decimal
	CharCount int
}

// AreaM2 returns the surface in m² of a width × height rectangle given in millimetres.
func AreaM2(widthMM, heightMM decimal.Decimal) decimal.Decimal {
	return widthMM.Div(thousand).Mul(heightMM.Div(thousand))
}

// LineTotal prices a line according to its calculation mode.
func LineTotal(l Line) decimal.Decimal {
	switch l.CalcType {
	case Area:
		return l.UnitPrice.Mul(AreaM2(l.WidthMM, l.HeightMM)).Mul(l.Quantity)
	case Char:
		return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.CharCount))).Mul(l.Quantity)
	default:
		return l.UnitPrice.Mul(l.Quantity)
	}
}

// VAT rounds total × rate to the nearest currency unit, halves away from zero.
func VAT(total, rate decimal.Decimal) decimal.Decimal {
	return total.Mul(rate).Round(0)
}

type Totals struct {
	TotalAmount  decimal.Decimal
	VATRate      decimal.Decimal
	VATAmount    decimal.Decimal
	TotalWithVAT decimal.Decimal
}

// ComputeTotals aggregates line totals. VAT only applies to sign quotes;
// a nil rate falls back to DefaultVATRate.
func ComputeTotals(lineTotals []decimal.Decimal, signQuote bool, rate *decimal.Decimal) Totals {
	total := decimal.Zero
	for _, lt := range lineTotals {
		total = total.Add(lt)
	}

	t := Totals{TotalAmount: total, VATRate: decimal.Zero, VATAmount: decimal.Zero, TotalWithVAT: total}
	if !signQuote {
		return t
	}
	t.VATRate = DefaultVATRate
	if rate != nil {
		t.VATRate = *rate
	}
	t.VATAmount = VAT(total, t.VATRate)
	t.TotalWithVAT = total.Add(t.VATAmount)
	return t
}

// FinishingQuantity is the default quantity of a finishing option for a base item of width × height mm:
// the area for m2, the perimeter in metres for m, and 1 otherwise. Rounded to 2 decimals.
func FinishingQuantity(unit UnitType, widthMM, heightMM decimal.Decimal) decimal.Decimal {
	switch unit {
	case SquareMeter:
		return AreaM2(widthMM, heightMM).Round(2)
	case Meter:
		return widthMM.Add(heightMM).Mul(two).Div(thousand).Round(2)
	default:
		return decimal.NewFromInt(1)
	}
}

// QuoteNumber formats Q-YYYYMMDD-#### from the UTC date and the number of quotes the owner already has.
func QuoteNumber(now time.Time, existing int) string {
	return fmt.Sprintf("Q-%s-%04d", now.UTC().Format("20060102"), existing+1)
}
