package docsvc

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/signquick/signquick/core/quote"
)

const quoteSheet = "Quote"

var quoteHeader = []interface{}{
	"Product", "Spec", "Calc type", "Width (mm)", "Height (mm)", "Area (m²)", "Chars",
	"Unit price", "Quantity", "Total", "Finishing",
}

// Excel renders the quote as a single sheet workbook: header block, item table and totals.
func (r *Renderer) Excel(q quote.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", quoteSheet); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "creating style")
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, errors.Wrap(err, "creating style")
	}

	rows := [][]interface{}{
		{"Quote", q.QuoteNumber},
		{"Date", q.CreatedAt.Format("2006-01-02")},
		{"Vendor", q.VendorName},
		{"Company", r.company},
		{"Note", q.Note},
		{},
		quoteHeader,
	}
	for _, it := range q.Items {
		up, _ := it.UnitPrice.Float64()
		qty, _ := it.Quantity.Float64()
		tot, _ := it.TotalPrice.Float64()
		w, _ := it.WidthMM.Float64()
		h, _ := it.HeightMM.Float64()
		area, _ := it.AreaM2.Float64()
		rows = append(rows, []interface{}{
			it.ProductName, it.Spec, string(it.CalcType), w, h, area, it.CharCount, up, qty, tot, it.IsFinishing,
		})
	}
	itemsEnd := len(rows)

	total, _ := q.TotalAmount.Float64()
	rows = append(rows, []interface{}{}, []interface{}{"Total", total})
	if q.IsSignQuote {
		rate, _ := q.VATRate.Float64()
		vat, _ := q.VATAmount.Float64()
		withVAT, _ := q.TotalWithVAT.Float64()
		rows = append(rows,
			[]interface{}{"VAT rate", rate},
			[]interface{}{"VAT", vat},
			[]interface{}{"Total incl. VAT", withVAT},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, errors.Wrap(err, "locating cell")
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(quoteSheet, cell, &row); err != nil {
			return nil, errors.Wrap(err, "writing row")
		}
	}

	headerRow := 7
	if err := f.SetRowStyle(quoteSheet, headerRow, headerRow, bold); err != nil {
		return nil, errors.Wrap(err, "styling header")
	}
	if itemsEnd > headerRow {
		from, _ := excelize.CoordinatesToCellName(8, headerRow+1)
		to, _ := excelize.CoordinatesToCellName(10, itemsEnd)
		if err := f.SetCellStyle(quoteSheet, from, to, amount); err != nil {
			return nil, errors.Wrap(err, "styling amounts")
		}
	}
	if err := f.SetColWidth(quoteSheet, "A", "B", 24); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing xlsx")
	}
	return buf.Bytes(), nil
}
