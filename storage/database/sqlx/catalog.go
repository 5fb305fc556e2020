package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/catalog"
)

type catalogRepository struct {
	repo
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(exec core.DBExecutor) *catalogRepository {
	return &catalogRepository{repo{exec: exec}}
}

type (
	categoryRow struct {
		ID     int64  `db:"id"`
		UserID int64  `db:"user_id"`
		Name   string `db:"name"`
	}

	optionRow struct {
		ID         int64      `db:"id"`
		UserID     int64      `db:"user_id"`
		CategoryID null.Int64 `db:"category_id"`
		Name       string     `db:"name"`
		Type       string     `db:"type"`
	}

	optionValueRow struct {
		ID         int64           `db:"id"`
		OptionID   int64           `db:"option_id"`
		Value      string          `db:"value"`
		ExtraPrice decimal.Decimal `db:"extra_price"`
	}
)

func (row categoryRow) toCategory() catalog.Category {
	return catalog.Category{ID: row.ID, UserID: row.UserID, Name: row.Name}
}

func (row optionRow) toOption() catalog.Option {
	return catalog.Option{
		ID:         row.ID,
		UserID:     row.UserID,
		CategoryID: row.CategoryID,
		Name:       row.Name,
		Type:       row.Type,
		Values:     make([]catalog.OptionValue, 0),
	}
}

func (row optionValueRow) toOptionValue() catalog.OptionValue {
	return catalog.OptionValue{ID: row.ID, OptionID: row.OptionID, Value: row.Value, ExtraPrice: row.ExtraPrice}
}

const (
	categoryColumns    = "id, user_id, name"
	optionColumns      = "id, user_id, category_id, name, type"
	optionValueColumns = "v.id, v.option_id, v.value, v.extra_price"
)

// Categories

func (r catalogRepository) QueryCategories(ctx context.Context, userID int64) ([]catalog.Category, error) {
	var rows []categoryRow
	if err := query(ctx, r.exec, &rows, "SELECT "+categoryColumns+" FROM categories WHERE user_id = ? ORDER BY id", userID); err != nil {
		return nil, errors.Wrap(err, "selecting categories")
	}
	cats := make([]catalog.Category, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, row.toCategory())
	}
	return cats, nil
}

func (r catalogRepository) GetCategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (catalog.Category, error) {
	var row categoryRow
	if err := get(ctx, r.getExec(exec), &row, "SELECT "+categoryColumns+" FROM categories WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return catalog.Category{}, trapNoRowsErr(err, catalog.ErrCategoryNotFound, "selecting category")
	}
	return row.toCategory(), nil
}

func (r catalogRepository) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	id, err := insert(ctx, r.exec, "INSERT INTO categories (user_id, name) VALUES (?, ?)", c.UserID, c.Name)
	if err != nil {
		return catalog.Category{}, errors.Wrap(err, "inserting category")
	}
	c.ID = id
	return c, nil
}

func (r catalogRepository) UpdateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	err := execOne(ctx, r.exec, catalog.ErrCategoryNotFound, "updating category",
		"UPDATE categories SET name = ? WHERE id = ? AND user_id = ?", c.Name, c.ID, c.UserID)
	if err != nil {
		return catalog.Category{}, err
	}
	return c, nil
}

func (r catalogRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	return execOne(ctx, r.exec, catalog.ErrCategoryNotFound, "deleting category",
		"DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
}

// Options

func (r catalogRepository) optionValues(ctx context.Context, exec core.DBExecutor, userID int64, optionID *int64) (map[int64][]catalog.OptionValue, error) {
	q := "SELECT " + optionValueColumns + " FROM option_values v JOIN options o ON o.id = v.option_id WHERE o.user_id = ?"
	args := []interface{}{userID}
	if optionID != nil {
		q += " AND o.id = ?"
		args = append(args, *optionID)
	}
	q += " ORDER BY v.id"

	var rows []optionValueRow
	if err := query(ctx, exec, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting option values")
	}
	values := make(map[int64][]catalog.OptionValue)
	for _, row := range rows {
		values[row.OptionID] = append(values[row.OptionID], row.toOptionValue())
	}
	return values, nil
}

func (r catalogRepository) QueryOptions(ctx context.Context, userID int64, categoryID *int64) ([]catalog.Option, error) {
	q := "SELECT " + optionColumns + " FROM options WHERE user_id = ?"
	args := []interface{}{userID}
	if categoryID != nil {
		q += " AND category_id = ?"
		args = append(args, *categoryID)
	}
	q += " ORDER BY id"

	var rows []optionRow
	if err := query(ctx, r.exec, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting options")
	}
	values, err := r.optionValues(ctx, r.exec, userID, nil)
	if err != nil {
		return nil, err
	}

	opts := make([]catalog.Option, 0, len(rows))
	for _, row := range rows {
		opt := row.toOption()
		if vals, ok := values[opt.ID]; ok {
			opt.Values = vals
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

func (r catalogRepository) GetOption(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (catalog.Option, error) {
	ex := r.getExec(exec)
	var row optionRow
	if err := get(ctx, ex, &row, "SELECT "+optionColumns+" FROM options WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return catalog.Option{}, trapNoRowsErr(err, catalog.ErrOptionNotFound, "selecting option")
	}
	values, err := r.optionValues(ctx, ex, userID, &id)
	if err != nil {
		return catalog.Option{}, err
	}
	opt := row.toOption()
	if vals, ok := values[opt.ID]; ok {
		opt.Values = vals
	}
	return opt, nil
}

func (r catalogRepository) CreateOption(ctx context.Context, o catalog.Option, exec ...core.DBExecutor) (catalog.Option, error) {
	id, err := insert(ctx, r.getExec(exec),
		"INSERT INTO options (user_id, category_id, name, type) VALUES (?, ?, ?, ?)",
		o.UserID, o.CategoryID, o.Name, o.Type,
	)
	if err != nil {
		return catalog.Option{}, errors.Wrap(err, "inserting option")
	}
	o.ID = id
	if o.Values == nil {
		o.Values = make([]catalog.OptionValue, 0)
	}
	return o, nil
}

func (r catalogRepository) UpdateOption(ctx context.Context, o catalog.Option, exec ...core.DBExecutor) (catalog.Option, error) {
	err := execOne(ctx, r.getExec(exec), catalog.ErrOptionNotFound, "updating option",
		"UPDATE options SET category_id = ?, name = ? WHERE id = ? AND user_id = ?",
		o.CategoryID, o.Name, o.ID, o.UserID,
	)
	if err != nil {
		return catalog.Option{}, err
	}
	return o, nil
}

func (r catalogRepository) CreateOptionValue(ctx context.Context, v catalog.OptionValue, exec ...core.DBExecutor) (catalog.OptionValue, error) {
	id, err := insert(ctx, r.getExec(exec),
		"INSERT INTO option_values (option_id, value, extra_price) VALUES (?, ?, ?)",
		v.OptionID, v.Value, v.ExtraPrice,
	)
	if err != nil {
		return catalog.OptionValue{}, errors.Wrap(err, "inserting option value")
	}
	v.ID = id
	return v, nil
}

func (r catalogRepository) UpdateOptionValue(ctx context.Context, v catalog.OptionValue, exec ...core.DBExecutor) (catalog.OptionValue, error) {
	err := execOne(ctx, r.getExec(exec), catalog.ErrOptionNotFound, "updating option value",
		"UPDATE option_values SET value = ?, extra_price = ? WHERE id = ?", v.Value, v.ExtraPrice, v.ID)
	if err != nil {
		return catalog.OptionValue{}, err
	}
	return v, nil
}

func (r catalogRepository) DeleteOption(ctx context.Context, userID, id int64) error {
	return execOne(ctx, r.exec, catalog.ErrOptionNotFound, "deleting option",
		"DELETE FROM options WHERE id = ? AND user_id = ?", id, userID)
}
