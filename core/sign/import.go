package sign

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
)

var (
	ErrNothingToImport = core.NewValidationError(errors.New("there is nothing to import"))

	// row numbers account for the spreadsheet header row
	firstRowNumber = 2
)

// Cell is a raw spreadsheet value. JSON numbers and strings are both kept as text.
type Cell string

func (c *Cell) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Cell(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrap(err, "cell must be a string or a number")
	}
	*c = Cell(n.String())
	return nil
}

func (c Cell) String() string {
	return strings.TrimSpace(string(c))
}

// ImportRow is one spreadsheet row: category, subcategory, material name, calc type, price and note.
type ImportRow struct {
	CategoryName    Cell `json:"category_name"`
	SubcategoryName Cell `json:"subcategory_name"`
	Name            Cell `json:"name"`
	CalcType        Cell `json:"calc_type"`
	UnitPrice       Cell `json:"unit_price"`
	Note            Cell `json:"note"`
}

type ImportResult struct {
	Success int      `json:"success"`
	Errors  []string `json:"errors"`
}

type BulkImportRequest struct {
	Items []ImportRow `json:"items"`
}

// SheetCodec reads material rows from a spreadsheet and produces the blank import template.
type SheetCodec interface {
	ReadMaterialRows(r io.Reader) ([]ImportRow, error)
	MaterialTemplate() ([]byte, error)
}

// BulkImport inserts every valid row, creating missing categories and subcategories by name.
// Invalid rows are reported and skipped; a database failure rolls back the whole batch.
func (svc *Service) BulkImport(ctx context.Context, userID int64, rows []ImportRow) (ImportResult, error) {
	if len(rows) == 0 {
		return ImportResult{}, ErrNothingToImport
	}

	res := ImportResult{Errors: make([]string, 0)}
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		cats := make(map[string]Category)
		subs := make(map[string]Subcategory)

		for i, row := range rows {
			rowNum := i + firstRowNumber
			catName, subName, name := row.CategoryName.String(), row.SubcategoryName.String(), row.Name.String()

			if catName == "" || subName == "" || name == "" {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: category, subcategory and material name are required", rowNum))
				continue
			}
			price, err := decimal.NewFromString(row.UnitPrice.String())
			if err != nil || price.IsNegative() {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d (%s): invalid unit price", rowNum, name))
				continue
			}

			cat, ok := cats[catName]
			if !ok {
				if cat, err = svc.getOrCreateCategory(ctx, userID, catName, tx); err != nil {
					return err
				}
				cats[catName] = cat
			}

			subKey := fmt.Sprintf("%d/%s", cat.ID, subName)
			sub, ok := subs[subKey]
			if !ok {
				if sub, err = svc.getOrCreateSubcategory(ctx, cat.ID, subName, tx); err != nil {
					return err
				}
				subs[subKey] = sub
			}

			if _, err = svc.createMaterial(ctx, Material{
				SubcategoryID: sub.ID,
				Name:          name,
				CalcType:      pricing.NormalizeCalcType(strings.ToLower(row.CalcType.String())),
				UnitPrice:     price,
				Note:          row.Note.String(),
			}, tx); err != nil {
				return err
			}
			res.Success++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "importing materials")
	}
	return res, nil
}

// ImportSheet reads the first sheet of a spreadsheet and bulk imports its rows.
func (svc *Service) ImportSheet(ctx context.Context, userID int64, r io.Reader) (ImportResult, error) {
	rows, err := svc.codec.ReadMaterialRows(r)
	if err != nil {
		return ImportResult{}, core.NewValidationError(errors.Wrap(err, "reading spreadsheet"))
	}
	return svc.BulkImport(ctx, userID, rows)
}

// ImportTemplate returns the spreadsheet users fill in for ImportSheet.
func (svc *Service) ImportTemplate() ([]byte, error) {
	return svc.codec.MaterialTemplate()
}

func (svc *Service) getOrCreateCategory(ctx context.Context, userID int64, name string, exec core.DBExecutor) (Category, error) {
	cat, err := svc.repo.GetCategoryByName(ctx, userID, name, exec)
	if err == nil || errors.Cause(err) != ErrCategoryNotFound {
		return cat, err
	}
	return svc.createCategory(ctx, userID, name, exec)
}

func (svc *Service) getOrCreateSubcategory(ctx context.Context, categoryID int64, name string, exec core.DBExecutor) (Subcategory, error) {
	sub, err := svc.repo.GetSubcategoryByName(ctx, categoryID, name, exec)
	if err == nil || errors.Cause(err) != ErrSubcategoryNotFound {
		return sub, err
	}
	return svc.createSubcategory(ctx, categoryID, name, exec)
}
