package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
	"github.com/signquick/signquick/core/sign"
)

// signRepository scopes subcategories and materials through sign_categories.user_id.
type signRepository struct {
	repo
}

var _ sign.Repository = (*signRepository)(nil) // interface compliance check

func NewSignRepository(exec core.DBExecutor) *signRepository {
	return &signRepository{repo{exec: exec}}
}

type (
	signCategoryRow struct {
		ID        int64  `db:"id"`
		UserID    int64  `db:"user_id"`
		Name      string `db:"name"`
		SortOrder int    `db:"sort_order"`
	}

	signSubcategoryRow struct {
		ID         int64  `db:"id"`
		CategoryID int64  `db:"category_id"`
		Name       string `db:"name"`
		SortOrder  int    `db:"sort_order"`
	}

	signMaterialRow struct {
		ID            int64           `db:"id"`
		SubcategoryID int64           `db:"subcategory_id"`
		Name          string          `db:"name"`
		CalcType      string          `db:"calc_type"`
		UnitPrice     decimal.Decimal `db:"unit_price"`
		UnitLabel     string          `db:"unit_label"`
		Note          string          `db:"note"`
		SortOrder     int             `db:"sort_order"`
	}

	finishingOptionRow struct {
		ID        int64           `db:"id"`
		UserID    int64           `db:"user_id"`
		Name      string          `db:"name"`
		UnitType  string          `db:"unit_type"`
		UnitPrice decimal.Decimal `db:"unit_price"`
		IsActive  bool            `db:"is_active"`
		SortOrder int             `db:"sort_order"`
	}
)

func (row signCategoryRow) toCategory() sign.Category {
	return sign.Category{ID: row.ID, UserID: row.UserID, Name: row.Name, SortOrder: row.SortOrder}
}

func (row signSubcategoryRow) toSubcategory() sign.Subcategory {
	return sign.Subcategory{ID: row.ID, CategoryID: row.CategoryID, Name: row.Name, SortOrder: row.SortOrder}
}

func (row signMaterialRow) toMaterial() sign.Material {
	return sign.Material{
		ID:            row.ID,
		SubcategoryID: row.SubcategoryID,
		Name:          row.Name,
		CalcType:      pricing.NormalizeCalcType(row.CalcType),
		UnitPrice:     row.UnitPrice,
		UnitLabel:     row.UnitLabel,
		Note:          row.Note,
		SortOrder:     row.SortOrder,
	}
}

func (row finishingOptionRow) toFinishingOption() sign.FinishingOption {
	return sign.FinishingOption{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		UnitType:  pricing.NormalizeUnitType(row.UnitType),
		UnitPrice: row.UnitPrice,
		IsActive:  row.IsActive,
		SortOrder: row.SortOrder,
	}
}

const (
	signCategoryColumns    = "id, user_id, name, sort_order"
	signSubcategoryColumns = "s.id, s.category_id, s.name, s.sort_order"
	signMaterialColumns    = "m.id, m.subcategory_id, m.name, m.calc_type, m.unit_price, m.unit_label, m.note, m.sort_order"
	finishingColumns       = "id, user_id, name, unit_type, unit_price, is_active, sort_order"

	// owned subcategories / materials
	ownedSubcategories = " FROM sign_subcategories s JOIN sign_categories c ON c.id = s.category_id WHERE c.user_id = ?"
	ownedMaterials     = " FROM sign_materials m JOIN sign_subcategories s ON s.id = m.subcategory_id" +
		" JOIN sign_categories c ON c.id = s.category_id WHERE c.user_id = ?"
)

// Categories

func (r signRepository) CountCategories(ctx context.Context, userID int64, exec ...core.DBExecutor) (int, error) {
	return count(ctx, r.getExec(exec), "SELECT COUNT(*) FROM sign_categories WHERE user_id = ?", userID)
}

func (r signRepository) QueryCategories(ctx context.Context, userID int64, exec ...core.DBExecutor) ([]sign.Category, error) {
	var rows []signCategoryRow
	q := "SELECT " + signCategoryColumns + " FROM sign_categories WHERE user_id = ? ORDER BY sort_order, id"
	if err := query(ctx, r.getExec(exec), &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting sign categories")
	}
	cats := make([]sign.Category, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, row.toCategory())
	}
	return cats, nil
}

func (r signRepository) GetCategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (sign.Category, error) {
	var row signCategoryRow
	q := "SELECT " + signCategoryColumns + " FROM sign_categories WHERE id = ? AND user_id = ?"
	if err := get(ctx, r.getExec(exec), &row, q, id, userID); err != nil {
		return sign.Category{}, trapNoRowsErr(err, sign.ErrCategoryNotFound, "selecting sign category")
	}
	return row.toCategory(), nil
}

func (r signRepository) GetCategoryByName(ctx context.Context, userID int64, name string, exec ...core.DBExecutor) (sign.Category, error) {
	var row signCategoryRow
	q := "SELECT " + signCategoryColumns + " FROM sign_categories WHERE user_id = ? AND name = ? ORDER BY id LIMIT 1"
	if err := get(ctx, r.getExec(exec), &row, q, userID, name); err != nil {
		return sign.Category{}, trapNoRowsErr(err, sign.ErrCategoryNotFound, "selecting sign category by name")
	}
	return row.toCategory(), nil
}

func (r signRepository) CreateCategory(ctx context.Context, c sign.Category, exec ...core.DBExecutor) (sign.Category, error) {
	id, err := insert(ctx, r.getExec(exec),
		"INSERT INTO sign_categories (user_id, name, sort_order) VALUES (?, ?, ?)", c.UserID, c.Name, c.SortOrder)
	if err != nil {
		return sign.Category{}, errors.Wrap(err, "inserting sign category")
	}
	c.ID = id
	return c, nil
}

func (r signRepository) UpdateCategory(ctx context.Context, c sign.Category, exec ...core.DBExecutor) (sign.Category, error) {
	ex := r.getExec(exec)
	err := execOne(ctx, ex, sign.ErrCategoryNotFound, "updating sign category",
		"UPDATE sign_categories SET name = ? WHERE id = ? AND user_id = ?", c.Name, c.ID, c.UserID)
	if err != nil {
		return sign.Category{}, err
	}
	return r.GetCategory(ctx, c.UserID, c.ID, ex)
}

func (r signRepository) DeleteCategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error {
	return execOne(ctx, r.getExec(exec), sign.ErrCategoryNotFound, "deleting sign category",
		"DELETE FROM sign_categories WHERE id = ? AND user_id = ?", id, userID)
}

// Subcategories

func (r signRepository) CountSubcategories(ctx context.Context, categoryID int64, exec ...core.DBExecutor) (int, error) {
	return count(ctx, r.getExec(exec), "SELECT COUNT(*) FROM sign_subcategories WHERE category_id = ?", categoryID)
}

func (r signRepository) QuerySubcategories(ctx context.Context, userID int64, categoryID *int64, exec ...core.DBExecutor) ([]sign.Subcategory, error) {
	q := "SELECT " + signSubcategoryColumns + ownedSubcategories
	args := []interface{}{userID}
	if categoryID != nil {
		q += " AND s.category_id = ?"
		args = append(args, *categoryID)
	}
	q += " ORDER BY s.sort_order, s.id"

	var rows []signSubcategoryRow
	if err := query(ctx, r.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting sign subcategories")
	}
	subs := make([]sign.Subcategory, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubcategory())
	}
	return subs, nil
}

func (r signRepository) GetSubcategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (sign.Subcategory, error) {
	var row signSubcategoryRow
	q := "SELECT " + signSubcategoryColumns + ownedSubcategories + " AND s.id = ?"
	if err := get(ctx, r.getExec(exec), &row, q, userID, id); err != nil {
		return sign.Subcategory{}, trapNoRowsErr(err, sign.ErrSubcategoryNotFound, "selecting sign subcategory")
	}
	return row.toSubcategory(), nil
}

func (r signRepository) GetSubcategoryByName(ctx context.Context, categoryID int64, name string, exec ...core.DBExecutor) (sign.Subcategory, error) {
	var row signSubcategoryRow
	q := "SELECT " + signSubcategoryColumns + " FROM sign_subcategories s WHERE s.category_id = ? AND s.name = ? ORDER BY s.id LIMIT 1"
	if err := get(ctx, r.getExec(exec), &row, q, categoryID, name); err != nil {
		return sign.Subcategory{}, trapNoRowsErr(err, sign.ErrSubcategoryNotFound, "selecting sign subcategory by name")
	}
	return row.toSubcategory(), nil
}

func (r signRepository) CreateSubcategory(ctx context.Context, s sign.Subcategory, exec ...core.DBExecutor) (sign.Subcategory, error) {
	id, err := insert(ctx, r.getExec(exec),
		"INSERT INTO sign_subcategories (category_id, name, sort_order) VALUES (?, ?, ?)", s.CategoryID, s.Name, s.SortOrder)
	if err != nil {
		return sign.Subcategory{}, errors.Wrap(err, "inserting sign subcategory")
	}
	s.ID = id
	return s, nil
}

func (r signRepository) UpdateSubcategory(ctx context.Context, userID int64, s sign.Subcategory, exec ...core.DBExecutor) (sign.Subcategory, error) {
	ex := r.getExec(exec)
	err := execOne(ctx, ex, sign.ErrSubcategoryNotFound, "updating sign subcategory",
		"UPDATE sign_subcategories SET name = ? WHERE id = ? AND category_id IN (SELECT id FROM sign_categories WHERE user_id = ?)",
		s.Name, s.ID, userID)
	if err != nil {
		return sign.Subcategory{}, err
	}
	return r.GetSubcategory(ctx, userID, s.ID, ex)
}

func (r signRepository) DeleteSubcategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error {
	return execOne(ctx, r.getExec(exec), sign.ErrSubcategoryNotFound, "deleting sign subcategory",
		"DELETE FROM sign_subcategories WHERE id = ? AND category_id IN (SELECT id FROM sign_categories WHERE user_id = ?)",
		id, userID)
}

// Materials

func (r signRepository) CountMaterials(ctx context.Context, subcategoryID int64, exec ...core.DBExecutor) (int, error) {
	return count(ctx, r.getExec(exec), "SELECT COUNT(*) FROM sign_materials WHERE subcategory_id = ?", subcategoryID)
}

func (r signRepository) QueryMaterials(ctx context.Context, userID int64, subcategoryID *int64, exec ...core.DBExecutor) ([]sign.Material, error) {
	q := "SELECT " + signMaterialColumns + ownedMaterials
	args := []interface{}{userID}
	if subcategoryID != nil {
		q += " AND m.subcategory_id = ?"
		args = append(args, *subcategoryID)
	}
	q += " ORDER BY m.sort_order, m.id"

	var rows []signMaterialRow
	if err := query(ctx, r.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting sign materials")
	}
	mats := make([]sign.Material, 0, len(rows))
	for _, row := range rows {
		mats = append(mats, row.toMaterial())
	}
	return mats, nil
}

func (r signRepository) GetMaterial(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (sign.Material, error) {
	var row signMaterialRow
	q := "SELECT " + signMaterialColumns + ownedMaterials + " AND m.id = ?"
	if err := get(ctx, r.getExec(exec), &row, q, userID, id); err != nil {
		return sign.Material{}, trapNoRowsErr(err, sign.ErrMaterialNotFound, "selecting sign material")
	}
	return row.toMaterial(), nil
}

func (r signRepository) CreateMaterial(ctx context.Context, m sign.Material, exec ...core.DBExecutor) (sign.Material, error) {
	id, err := insert(ctx, r.getExec(exec),
		`INSERT INTO sign_materials (subcategory_id, name, calc_type, unit_price, unit_label, note, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.SubcategoryID, m.Name, string(m.CalcType), m.UnitPrice, m.UnitLabel, m.Note, m.SortOrder,
	)
	if err != nil {
		return sign.Material{}, errors.Wrap(err, "inserting sign material")
	}
	m.ID = id
	return m, nil
}

func (r signRepository) UpdateMaterial(ctx context.Context, userID int64, m sign.Material, exec ...core.DBExecutor) (sign.Material, error) {
	ex := r.getExec(exec)
	err := execOne(ctx, ex, sign.ErrMaterialNotFound, "updating sign material",
		`UPDATE sign_materials SET name = ?, calc_type = ?, unit_price = ?, unit_label = ?, note = ?
		WHERE id = ? AND subcategory_id IN (`+"SELECT s.id"+ownedSubcategories+`)`,
		m.Name, string(m.CalcType), m.UnitPrice, m.UnitLabel, m.Note, m.ID, userID,
	)
	if err != nil {
		return sign.Material{}, err
	}
	return r.GetMaterial(ctx, userID, m.ID, ex)
}

func (r signRepository) DeleteMaterial(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error {
	return execOne(ctx, r.getExec(exec), sign.ErrMaterialNotFound, "deleting sign material",
		"DELETE FROM sign_materials WHERE id = ? AND subcategory_id IN (SELECT s.id"+ownedSubcategories+")", id, userID)
}

// Finishing options

func (r signRepository) CountFinishingOptions(ctx context.Context, userID int64, exec ...core.DBExecutor) (int, error) {
	return count(ctx, r.getExec(exec), "SELECT COUNT(*) FROM finishing_options WHERE user_id = ?", userID)
}

func (r signRepository) QueryFinishingOptions(ctx context.Context, userID int64, exec ...core.DBExecutor) ([]sign.FinishingOption, error) {
	var rows []finishingOptionRow
	q := "SELECT " + finishingColumns + " FROM finishing_options WHERE user_id = ? ORDER BY sort_order, id"
	if err := query(ctx, r.getExec(exec), &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting finishing options")
	}
	opts := make([]sign.FinishingOption, 0, len(rows))
	for _, row := range rows {
		opts = append(opts, row.toFinishingOption())
	}
	return opts, nil
}

func (r signRepository) CreateFinishingOption(ctx context.Context, f sign.FinishingOption, exec ...core.DBExecutor) (sign.FinishingOption, error) {
	id, err := insert(ctx, r.getExec(exec),
		`INSERT INTO finishing_options (user_id, name, unit_type, unit_price, is_active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.UserID, f.Name, string(f.UnitType), f.UnitPrice, f.IsActive, f.SortOrder,
	)
	if err != nil {
		return sign.FinishingOption{}, errors.Wrap(err, "inserting finishing option")
	}
	f.ID = id
	return f, nil
}

func (r signRepository) UpdateFinishingOption(ctx context.Context, f sign.FinishingOption, exec ...core.DBExecutor) (sign.FinishingOption, error) {
	ex := r.getExec(exec)
	err := execOne(ctx, ex, sign.ErrFinishingOptionNotFound, "updating finishing option",
		"UPDATE finishing_options SET name = ?, unit_type = ?, unit_price = ?, is_active = ? WHERE id = ? AND user_id = ?",
		f.Name, string(f.UnitType), f.UnitPrice, f.IsActive, f.ID, f.UserID,
	)
	if err != nil {
		return sign.FinishingOption{}, err
	}

	var row finishingOptionRow
	q := "SELECT " + finishingColumns + " FROM finishing_options WHERE id = ?"
	if err = get(ctx, ex, &row, q, f.ID); err != nil {
		return sign.FinishingOption{}, trapNoRowsErr(err, sign.ErrFinishingOptionNotFound, "selecting finishing option")
	}
	return row.toFinishingOption(), nil
}

func (r signRepository) DeleteFinishingOption(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error {
	return execOne(ctx, r.getExec(exec), sign.ErrFinishingOptionNotFound, "deleting finishing option",
		"DELETE FROM finishing_options WHERE id = ? AND user_id = ?", id, userID)
}
