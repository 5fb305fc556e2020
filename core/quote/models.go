package quote

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
)

type Quote struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"-"`
	QuoteNumber  string          `json:"quote_number"`
	VendorName   string          `json:"vendor_name"`
	Note         string          `json:"note"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	VATAmount    decimal.Decimal `json:"vat_amount"`
	TotalWithVAT decimal.Decimal `json:"total_with_vat"`
	IsSignQuote  bool            `json:"is_sign_quote"`
	CreatedAt    time.Time       `json:"created_at"` // UTC
	Items        []Item          `json:"items,omitempty"`
}

type Item struct {
	ID          int64            `json:"id"`
	QuoteID     int64            `json:"quote_id"`
	ProductName string           `json:"product_name"`
	Spec        string           `json:"spec"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Quantity    decimal.Decimal  `json:"quantity"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	CalcType    pricing.CalcType `json:"calc_type"`
	WidthMM     decimal.Decimal  `json:"width_mm"`
	HeightMM    decimal.Decimal  `json:"height_mm"`
	AreaM2      decimal.Decimal  `json:"area_m2"`
	CharCount   int              `json:"char_count"`
	IsFinishing bool             `json:"is_finishing"`
}

// NewQuote contains what is needed to price and store a Quote.
type NewQuote struct {
	VendorName  string           `json:"vendor_name" validate:"required"`
	Note        string           `json:"note"`
	IsSignQuote core.Flag        `json:"is_sign_quote"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
	Items       []NewItem        `json:"items" validate:"required,min=1,dive"`
}

// NewItem is a quote line as sent by the client. Totals are always recomputed.
// UnitType only matters for finishing lines without a quantity.
type NewItem struct {
	ProductName string          `json:"product_name" validate:"required"`
	Spec        string          `json:"spec"`
	CalcType    string          `json:"calc_type" validate:"omitempty,calctype"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	WidthMM     decimal.Decimal `json:"width_mm"`
	HeightMM    decimal.Decimal `json:"height_mm"`
	CharCount   int             `json:"char_count" validate:"gte=0"`
	IsFinishing core.Flag       `json:"is_finishing"`
	UnitType    string          `json:"unit_type" validate:"omitempty,unittype"`
}

func (nq *NewQuote) Validate(validate *validator.Validate) error {
	nq.VendorName = core.CleanString(nq.VendorName)
	nq.Note = core.CleanString(nq.Note)
	for i := range nq.Items {
		it := &nq.Items[i]
		it.ProductName = core.CleanString(it.ProductName)
		it.Spec = core.CleanString(it.Spec)
		it.CalcType = core.CleanString(it.CalcType, true /* lower */)
		it.UnitType = core.CleanString(it.UnitType, true /* lower */)
	}

	if err := validate.Struct(nq); err != nil {
		return err
	}

	if nq.VATRate != nil && nq.VATRate.IsNegative() {
		return core.NewFieldError("vat_rate", "vat_rate must be 0 or greater")
	}
	for i, it := range nq.Items {
		if err := it.check(i); err != nil {
			return err
		}
	}
	return nil
}

// check enforces the numeric rules validator tags cannot express on decimals.
func (it NewItem) check(i int) error {
	fld := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
	fail := func(name, rule string) error {
		return core.NewFieldError(fld(name), fmt.Sprintf("%s %s", fld(name), rule))
	}

	if it.UnitPrice.IsNegative() {
		return fail("unit_price", "must be 0 or greater")
	}
	if it.WidthMM.IsNegative() {
		return fail("width_mm", "must be 0 or greater")
	}
	if it.HeightMM.IsNegative() {
		return fail("height_mm", "must be 0 or greater")
	}
	if it.Quantity.IsNegative() || (!bool(it.IsFinishing) && !it.Quantity.IsPositive()) {
		return fail("quantity", "must be greater than 0")
	}

	// finishing lines are always priced per unit
	if it.IsFinishing {
		return nil
	}
	switch pricing.NormalizeCalcType(it.CalcType) {
	case pricing.Area:
		if !it.WidthMM.IsPositive() || !it.HeightMM.IsPositive() {
			return fail("width_mm", "and height_mm are required for m2 items")
		}
	case pricing.Char:
		if it.CharCount <= 0 {
			return fail("char_count", "is required for char items")
		}
	}
	return nil
}

// SendRequest is the payload of the quote mailing endpoint.
type SendRequest struct {
	To      string `json:"to" validate:"required,email"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (sr *SendRequest) Validate(validate *validator.Validate) error {
	sr.To = core.CleanString(sr.To, true /* lower */)
	sr.Name = core.CleanString(sr.Name)
	sr.Message = core.CleanString(sr.Message)
	return validate.Struct(sr)
}

func (sr SendRequest) Address() (mail.Address, error) {
	addr, err := mail.ParseAddress(sr.To)
	if err != nil {
		return mail.Address{}, errors.Wrap(err, "parsing recipient")
	}
	addr.Name = sr.Name
	return *addr, nil
}

// MailData feeds the quote email templates.
type MailData struct {
	AppName      string
	Number       string
	VendorName   string
	Message      string
	TotalAmount  string
	IsSignQuote  bool
	VATAmount    string
	TotalWithVAT string
}
