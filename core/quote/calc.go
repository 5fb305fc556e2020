package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
)

// Calculate prices a validated NewQuote: line totals, area, finishing quantities and totals.
// defaultRate applies to sign quotes that do not carry their own VAT rate.
func Calculate(nq NewQuote, defaultRate decimal.Decimal) (Quote, error) {
	q := Quote{
		VendorName:  nq.VendorName,
		Note:        nq.Note,
		IsSignQuote: bool(nq.IsSignQuote),
		Items:       make([]Item, 0, len(nq.Items)),
	}

	base, hasBase := baseItem(nq.Items)
	lineTotals := make([]decimal.Decimal, 0, len(nq.Items))

	for i, ni := range nq.Items {
		it := Item{
			ProductName: ni.ProductName,
			Spec:        ni.Spec,
			UnitPrice:   ni.UnitPrice,
			Quantity:    ni.Quantity,
			CalcType:    pricing.NormalizeCalcType(ni.CalcType),
			WidthMM:     ni.WidthMM,
			HeightMM:    ni.HeightMM,
			CharCount:   ni.CharCount,
			IsFinishing: bool(ni.IsFinishing),
		}

		if it.IsFinishing {
			it.CalcType = pricing.Unit
			if it.Quantity.IsZero() {
				qty, err := finishingQuantity(i, pricing.NormalizeUnitType(ni.UnitType), base, hasBase)
				if err != nil {
					return Quote{}, err
				}
				it.Quantity = qty
			}
		}

		if it.WidthMM.IsPositive() && it.HeightMM.IsPositive() {
			it.AreaM2 = pricing.AreaM2(it.WidthMM, it.HeightMM)
		}
		it.TotalPrice = pricing.LineTotal(pricing.Line{
			CalcType:  it.CalcType,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			WidthMM:   it.WidthMM,
			HeightMM:  it.HeightMM,
			CharCount: it.CharCount,
		})

		lineTotals = append(lineTotals, it.TotalPrice)
		q.Items = append(q.Items, it)
	}

	rate := nq.VATRate
	if rate == nil {
		rate = &defaultRate
	}
	totals := pricing.ComputeTotals(lineTotals, bool(nq.IsSignQuote), rate)
	q.TotalAmount = totals.TotalAmount
	q.VATRate = totals.VATRate
	q.VATAmount = totals.VATAmount
	q.TotalWithVAT = totals.TotalWithVAT
	return q, nil
}

// baseItem is the first non-finishing item; finishing quantities derive from its dimensions.
func baseItem(items []NewItem) (NewItem, bool) {
	for _, it := range items {
		if !it.IsFinishing {
			return it, true
		}
	}
	return NewItem{}, false
}

func finishingQuantity(i int, unit pricing.UnitType, base NewItem, hasBase bool) (decimal.Decimal, error) {
	if unit == pricing.Each {
		return pricing.FinishingQuantity(unit, decimal.Zero, decimal.Zero), nil
	}
	if !hasBase || !base.WidthMM.IsPositive() || !base.HeightMM.IsPositive() {
		fld := fmt.Sprintf("items[%d].quantity", i)
		return decimal.Zero, core.NewFieldError(fld, fmt.Sprintf("%s is required when no item has dimensions", fld))
	}
	return pricing.FinishingQuantity(unit, base.WidthMM, base.HeightMM), nil
}
