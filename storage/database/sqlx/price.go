package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/price"
)

type priceRepository struct {
	repo
}

var _ price.Repository = (*priceRepository)(nil) // interface compliance check

func NewPriceRepository(exec core.DBExecutor) *priceRepository {
	return &priceRepository{repo{exec: exec}}
}

type priceRow struct {
	ID          int64           `db:"id"`
	UserID      int64           `db:"user_id"`
	VendorName  string          `db:"vendor_name"`
	ProductName string          `db:"product_name"`
	Spec        string          `db:"spec"`
	Unit        string          `db:"unit"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	CategoryID  null.Int64      `db:"category_id"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (row priceRow) toPrice() price.Price {
	return price.Price{
		ID:          row.ID,
		UserID:      row.UserID,
		VendorName:  row.VendorName,
		ProductName: row.ProductName,
		Spec:        row.Spec,
		Unit:        row.Unit,
		UnitPrice:   row.UnitPrice,
		CategoryID:  row.CategoryID,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

const priceColumns = "id, user_id, vendor_name, product_name, spec, unit, unit_price, category_id, created_at"

func (r priceRepository) QueryPrices(ctx context.Context, userID int64, filter price.QueryFilter) ([]price.Price, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}

	if filter.Vendor != "" {
		where = append(where, "vendor_name = ?")
		args = append(args, filter.Vendor)
	}
	// prices with product name or spec matching the search keyword
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		where = append(where, "(LOWER(product_name) LIKE LOWER(?) OR LOWER(spec) LIKE LOWER(?))")
		args = append(args, val, val)
	}

	var rows []priceRow
	q := "SELECT " + priceColumns + " FROM prices WHERE " + strings.Join(where, " AND ") + " ORDER BY vendor_name, product_name, id"
	if err := query(ctx, r.exec, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting prices")
	}

	prices := make([]price.Price, 0, len(rows))
	for _, row := range rows {
		prices = append(prices, row.toPrice())
	}
	return prices, nil
}

func (r priceRepository) QueryVendors(ctx context.Context, userID int64) ([]string, error) {
	vendors := make([]string, 0)
	if err := query(ctx, r.exec, &vendors, "SELECT DISTINCT vendor_name FROM prices WHERE user_id = ? ORDER BY vendor_name", userID); err != nil {
		return nil, errors.Wrap(err, "selecting vendors")
	}
	return vendors, nil
}

func (r priceRepository) CategoryExists(ctx context.Context, userID, categoryID int64) (bool, error) {
	n, err := count(ctx, r.exec, "SELECT COUNT(*) FROM categories WHERE id = ? AND user_id = ?", categoryID, userID)
	if err != nil {
		return false, errors.Wrap(err, "checking category")
	}
	return n > 0, nil
}

func (r priceRepository) CreatePrice(ctx context.Context, p price.Price) (price.Price, error) {
	id, err := insert(ctx, r.exec,
		`INSERT INTO prices (user_id, vendor_name, product_name, spec, unit, unit_price, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.VendorName, p.ProductName, p.Spec, p.Unit, p.UnitPrice, p.CategoryID, p.CreatedAt.UTC(),
	)
	if err != nil {
		return price.Price{}, errors.Wrap(err, "inserting price")
	}
	p.ID = id
	return p, nil
}

func (r priceRepository) UpdatePrice(ctx context.Context, p price.Price) (price.Price, error) {
	err := execOne(ctx, r.exec, price.ErrNotFound, "updating price",
		`UPDATE prices SET vendor_name = ?, product_name = ?, spec = ?, unit = ?, unit_price = ?, category_id = ?
		WHERE id = ? AND user_id = ?`,
		p.VendorName, p.ProductName, p.Spec, p.Unit, p.UnitPrice, p.CategoryID, p.ID, p.UserID,
	)
	if err != nil {
		return price.Price{}, err
	}

	var row priceRow
	if err = get(ctx, r.exec, &row, "SELECT "+priceColumns+" FROM prices WHERE id = ?", p.ID); err != nil {
		return price.Price{}, trapNoRowsErr(err, price.ErrNotFound, "selecting price")
	}
	return row.toPrice(), nil
}

func (r priceRepository) DeletePrice(ctx context.Context, userID, id int64) error {
	return execOne(ctx, r.exec, price.ErrNotFound, "deleting price", "DELETE FROM prices WHERE id = ? AND user_id = ?", id, userID)
}
