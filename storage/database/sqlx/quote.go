package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
	"github.com/signquick/signquick/core/quote"
)

type quoteRepository struct {
	repo
}

var _ quote.Repository = (*quoteRepository)(nil) // interface compliance check

func NewQuoteRepository(exec core.DBExecutor) *quoteRepository {
	return &quoteRepository{repo{exec: exec}}
}

type (
	quoteRow struct {
		ID           int64           `db:"id"`
		UserID       int64           `db:"user_id"`
		QuoteNumber  string          `db:"quote_number"`
		VendorName   string          `db:"vendor_name"`
		Note         string          `db:"note"`
		TotalAmount  decimal.Decimal `db:"total_amount"`
		VATRate      decimal.Decimal `db:"vat_rate"`
		VATAmount    decimal.Decimal `db:"vat_amount"`
		TotalWithVAT decimal.Decimal `db:"total_with_vat"`
		IsSignQuote  bool            `db:"is_sign_quote"`
		CreatedAt    time.Time       `db:"created_at"`
	}

	quoteItemRow struct {
		ID          int64           `db:"id"`
		QuoteID     int64           `db:"quote_id"`
		ProductName string          `db:"product_name"`
		Spec        string          `db:"spec"`
		UnitPrice   decimal.Decimal `db:"unit_price"`
		Quantity    decimal.Decimal `db:"quantity"`
		TotalPrice  decimal.Decimal `db:"total_price"`
		CalcType    string          `db:"calc_type"`
		WidthMM     decimal.Decimal `db:"width_mm"`
		HeightMM    decimal.Decimal `db:"height_mm"`
		AreaM2      decimal.Decimal `db:"area_m2"`
		CharCount   int             `db:"char_count"`
		IsFinishing bool            `db:"is_finishing"`
	}
)

func (row quoteRow) toQuote() quote.Quote {
	return quote.Quote{
		ID:           row.ID,
		UserID:       row.UserID,
		QuoteNumber:  row.QuoteNumber,
		VendorName:   row.VendorName,
		Note:         row.Note,
		TotalAmount:  row.TotalAmount,
		VATRate:      row.VATRate,
		VATAmount:    row.VATAmount,
		TotalWithVAT: row.TotalWithVAT,
		IsSignQuote:  row.IsSignQuote,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

func (row quoteItemRow) toItem() quote.Item {
	return quote.Item{
		ID:          row.ID,
		QuoteID:     row.QuoteID,
		ProductName: row.ProductName,
		Spec:        row.Spec,
		UnitPrice:   row.UnitPrice,
		Quantity:    row.Quantity,
		TotalPrice:  row.TotalPrice,
		CalcType:    pricing.NormalizeCalcType(row.CalcType),
		WidthMM:     row.WidthMM,
		HeightMM:    row.HeightMM,
		AreaM2:      row.AreaM2,
		CharCount:   row.CharCount,
		IsFinishing: row.IsFinishing,
	}
}

const (
	quoteColumns = "id, user_id, quote_number, vendor_name, note, total_amount, vat_rate, vat_amount, " +
		"total_with_vat, is_sign_quote, created_at"
	quoteItemColumns = "id, quote_id, product_name, spec, unit_price, quantity, total_price, calc_type, " +
		"width_mm, height_mm, area_m2, char_count, is_finishing"

	defaultQuoteOrdering = "created_at DESC, id DESC"
)

// quoteOrderings maps the ordering params to their column.
var quoteOrderings = map[string]string{
	"id":           "id",
	"created_at":   "created_at",
	"quote_number": "quote_number",
	"vendor_name":  "vendor_name",
	"total_amount": "total_amount",
}

func (r quoteRepository) CountQuotes(ctx context.Context, userID int64, exec ...core.DBExecutor) (int, error) {
	return count(ctx, r.getExec(exec), "SELECT COUNT(*) FROM quotes WHERE user_id = ?", userID)
}

func (r quoteRepository) CreateQuote(ctx context.Context, q quote.Quote, exec ...core.DBExecutor) (quote.Quote, error) {
	id, err := insert(ctx, r.getExec(exec),
		`INSERT INTO quotes (user_id, quote_number, vendor_name, note, total_amount, vat_rate, vat_amount,
		total_with_vat, is_sign_quote, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.UserID, q.QuoteNumber, q.VendorName, q.Note, q.TotalAmount, q.VATRate, q.VATAmount,
		q.TotalWithVAT, q.IsSignQuote, q.CreatedAt.UTC(),
	)
	if err != nil {
		return quote.Quote{}, errors.Wrap(err, "inserting quote")
	}
	q.ID = id
	return q, nil
}

func (r quoteRepository) CreateItem(ctx context.Context, it quote.Item, exec ...core.DBExecutor) (quote.Item, error) {
	id, err := insert(ctx, r.getExec(exec),
		`INSERT INTO quote_items (quote_id, product_name, spec, unit_price, quantity, total_price, calc_type,
		width_mm, height_mm, area_m2, char_count, is_finishing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.QuoteID, it.ProductName, it.Spec, it.UnitPrice, it.Quantity, it.TotalPrice, string(it.CalcType),
		it.WidthMM, it.HeightMM, it.AreaM2, it.CharCount, it.IsFinishing,
	)
	if err != nil {
		return quote.Item{}, errors.Wrap(err, "inserting quote item")
	}
	it.ID = id
	return it, nil
}

func (r quoteRepository) QueryQuotes(ctx context.Context, userID int64, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]quote.Quote, error) {
	var rows []quoteRow
	q := "SELECT " + quoteColumns + " FROM quotes WHERE user_id = ? ORDER BY " + orderBy(ordering, quoteOrderings, defaultQuoteOrdering)
	if err := query(ctx, r.getExec(exec), &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting quotes")
	}
	quotes := make([]quote.Quote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, row.toQuote())
	}
	return quotes, nil
}

func (r quoteRepository) GetQuote(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (quote.Quote, error) {
	ex := r.getExec(exec)

	var row quoteRow
	if err := get(ctx, ex, &row, "SELECT "+quoteColumns+" FROM quotes WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return quote.Quote{}, trapNoRowsErr(err, quote.ErrNotFound, "selecting quote")
	}

	var itemRows []quoteItemRow
	if err := query(ctx, ex, &itemRows, "SELECT "+quoteItemColumns+" FROM quote_items WHERE quote_id = ? ORDER BY id", id); err != nil {
		return quote.Quote{}, errors.Wrap(err, "selecting quote items")
	}

	q := row.toQuote()
	q.Items = make([]quote.Item, 0, len(itemRows))
	for _, ir := range itemRows {
		q.Items = append(q.Items, ir.toItem())
	}
	return q, nil
}

func (r quoteRepository) DeleteQuote(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error {
	return execOne(ctx, r.getExec(exec), quote.ErrNotFound, "deleting quote",
		"DELETE FROM quotes WHERE id = ? AND user_id = ?", id, userID)
}
