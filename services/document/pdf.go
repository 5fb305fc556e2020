// Package docsvc renders quotes as PDF and Excel documents and reads material spreadsheets.
package docsvc

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
	"github.com/signquick/signquick/core/quote"
)

const (
	utf8Family = "NotoSansKR"
	coreFamily = "Helvetica"
	qrImage    = "quote-qr"
	qrSize     = 256
)

type Renderer struct {
	company      string
	fontPath     string
	boldFontPath string
}

var _ quote.Renderer = (*Renderer)(nil) // interface compliance check

// NewRenderer uses the configured TTF fonts for the PDF; Korean text needs one.
// Without fonts the core Helvetica font is used.
func NewRenderer(conf *core.Config) *Renderer {
	return &Renderer{
		company:      conf.PDF.CompanyName,
		fontPath:     conf.PDF.FontPath,
		boldFontPath: conf.PDF.BoldFontPath,
	}
}

type pdfWriter struct {
	*gofpdf.Fpdf
	family string
	tr     func(string) string
}

func (r *Renderer) newPDF() *pdfWriter {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)

	w := &pdfWriter{Fpdf: pdf, family: coreFamily, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if r.fontPath != "" {
		bold := r.boldFontPath
		if bold == "" {
			bold = r.fontPath
		}
		pdf.AddUTF8Font(utf8Family, "", r.fontPath)
		pdf.AddUTF8Font(utf8Family, "B", bold)
		w.family = utf8Family
		w.tr = func(s string) string { return s }
	}
	return w
}

func (w *pdfWriter) font(style string, size float64) {
	w.SetFont(w.family, style, size)
}

func (w *pdfWriter) cell(width, height float64, s, border, align string, fill bool) {
	w.CellFormat(width, height, w.tr(s), border, 0, align, fill, 0, "")
}

// PDF renders the quote: header, QR summary, item table and totals.
func (r *Renderer) PDF(q quote.Quote) ([]byte, error) {
	pdf := r.newPDF()
	pdf.SetTitle(q.QuoteNumber, true)
	pdf.SetAuthor(r.company, true)
	pdf.AddPage()

	// header
	pdf.font("B", 20)
	pdf.cell(0, 12, "견적서", "", "C", false)
	pdf.Ln(14)

	pdf.font("", 10)
	pdf.cell(120, 6, fmt.Sprintf("No. %s", q.QuoteNumber), "", "L", false)
	pdf.Ln(6)
	pdf.cell(120, 6, fmt.Sprintf("Date: %s", q.CreatedAt.Format("2006-01-02")), "", "L", false)
	pdf.Ln(6)
	pdf.cell(120, 6, fmt.Sprintf("To: %s", q.VendorName), "", "L", false)
	pdf.Ln(6)
	pdf.cell(120, 6, fmt.Sprintf("From: %s", r.company), "", "L", false)
	pdf.Ln(6)
	if q.Note != "" {
		pdf.MultiCell(120, 5, pdf.tr(q.Note), "", "L", false)
	}

	qr, err := qrcode.Encode(qrContent(q), qrcode.Medium, qrSize)
	if err != nil {
		return nil, errors.Wrap(err, "encoding qr code")
	}
	pdf.RegisterImageOptionsReader(qrImage, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qr))
	pdf.ImageOptions(qrImage, 165, 30, 30, 30, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetY(70)

	// items
	cols := []struct {
		title string
		width float64
		align string
	}{
		{"품목", 50, "L"}, {"규격", 35, "L"}, {"단가", 25, "R"}, {"수량", 20, "R"}, {"면적(m²)", 20, "R"}, {"금액", 30, "R"},
	}
	pdf.font("B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range cols {
		pdf.cell(c.width, 8, c.title, "1", "C", true)
	}
	pdf.Ln(-1)

	pdf.font("", 9)
	for _, it := range q.Items {
		name := it.ProductName
		if it.IsFinishing {
			name = "+ " + name
		}
		area := ""
		if it.AreaM2.IsPositive() {
			area = pricing.FormatQuantity(it.AreaM2)
		}
		spec := itemSpec(it)

		values := []string{
			core.Truncate(name, 28),
			core.Truncate(spec, 20),
			pricing.FormatAmount(it.UnitPrice),
			pricing.FormatQuantity(it.Quantity),
			area,
			pricing.FormatAmount(it.TotalPrice),
		}
		for i, c := range cols {
			pdf.cell(c.width, 7, values[i], "1", c.align, false)
		}
		pdf.Ln(-1)
	}

	// totals
	pdf.Ln(4)
	totals := [][2]string{{"합계", pricing.FormatAmount(q.TotalAmount)}}
	if q.IsSignQuote {
		totals = append(totals,
			[2]string{fmt.Sprintf("부가세 (%s%%)", pricing.FormatQuantity(q.VATRate.Shift(2))), pricing.FormatAmount(q.VATAmount)},
			[2]string{"총액", pricing.FormatAmount(q.TotalWithVAT)},
		)
	}
	for i, t := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.font(style, 10)
		pdf.SetX(115)
		pdf.cell(40, 7, t[0], "1", "L", false)
		pdf.cell(40, 7, t[1], "1", "R", false)
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(err, "building pdf")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf.Bytes(), nil
}

func qrContent(q quote.Quote) string {
	total := q.TotalAmount
	if q.IsSignQuote {
		total = q.TotalWithVAT
	}
	return fmt.Sprintf("%s|%s|%s", q.QuoteNumber, q.VendorName, total.Round(0).String())
}

// itemSpec describes the item dimensions when the spec is empty.
func itemSpec(it quote.Item) string {
	if it.Spec != "" {
		return it.Spec
	}
	switch it.CalcType {
	case pricing.Area:
		return fmt.Sprintf("%sx%smm", pricing.FormatQuantity(it.WidthMM), pricing.FormatQuantity(it.HeightMM))
	case pricing.Char:
		return fmt.Sprintf("%d chars", it.CharCount)
	}
	return ""
}
