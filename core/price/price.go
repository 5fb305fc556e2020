// Package price manages the vendor price list.
package price

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/signquick/signquick/core"
)

var (
	ErrNotFound         = core.NewNotFoundError("price not found")
	ErrCategoryNotFound = core.NewNotFoundError("category not found")

	defaultUnit = "ea"
	nowFunc     = time.Now // mockable
)

type Price struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"-"`
	VendorName  string          `json:"vendor_name"`
	ProductName string          `json:"product_name"`
	Spec        string          `json:"spec"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CategoryID  null.Int64      `json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"` // UTC
}

// NewPrice is used to create and to update a Price.
type NewPrice struct {
	VendorName  string           `json:"vendor_name" validate:"required"`
	ProductName string           `json:"product_name" validate:"required"`
	Spec        string           `json:"spec"`
	Unit        string           `json:"unit"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	CategoryID  null.Int64       `json:"category_id"`
}

func (np *NewPrice) Validate(validate *validator.Validate) error {
	np.VendorName = core.CleanString(np.VendorName)
	np.ProductName = core.CleanString(np.ProductName)
	np.Spec = core.CleanString(np.Spec)
	np.Unit = core.CleanString(np.Unit)
	if np.Unit == "" {
		np.Unit = defaultUnit
	}

	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.UnitPrice == nil {
		return core.NewFieldError("unit_price", "unit_price is required")
	}
	if np.UnitPrice.IsNegative() {
		return core.NewFieldError("unit_price", "unit_price must be 0 or greater")
	}
	return nil
}

type QueryFilter struct {
	Vendor string `query:"vendor"`
	Search string `query:"search"` // case-insensitive match on product name or spec
}

func (qf *QueryFilter) Clean() {
	qf.Vendor = core.CleanString(qf.Vendor)
	qf.Search = core.CleanString(qf.Search)
}

type (
	Repository interface {
		QueryPrices(ctx context.Context, userID int64, filter QueryFilter) ([]Price, error)
		QueryVendors(ctx context.Context, userID int64) ([]string, error)
		CategoryExists(ctx context.Context, userID, categoryID int64) (bool, error)
		CreatePrice(ctx context.Context, p Price) (Price, error)
		UpdatePrice(ctx context.Context, p Price) (Price, error)
		DeletePrice(ctx context.Context, userID, id int64) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Query(ctx context.Context, userID int64, filter QueryFilter) ([]Price, error) {
	filter.Clean()
	return svc.repo.QueryPrices(ctx, userID, filter)
}

func (svc *Service) Vendors(ctx context.Context, userID int64) ([]string, error) {
	return svc.repo.QueryVendors(ctx, userID)
}

func (svc *Service) checkCategory(ctx context.Context, userID int64, categoryID null.Int64) error {
	if !categoryID.Valid {
		return nil
	}
	ok, err := svc.repo.CategoryExists(ctx, userID, categoryID.Int64)
	if err != nil {
		return errors.Wrap(err, "checking category")
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

// Create expects a validated NewPrice.
func (svc *Service) Create(ctx context.Context, userID int64, np NewPrice) (Price, error) {
	if err := svc.checkCategory(ctx, userID, np.CategoryID); err != nil {
		return Price{}, err
	}
	return svc.repo.CreatePrice(ctx, Price{
		UserID:      userID,
		VendorName:  np.VendorName,
		ProductName: np.ProductName,
		Spec:        np.Spec,
		Unit:        np.Unit,
		UnitPrice:   *np.UnitPrice,
		CategoryID:  np.CategoryID,
		CreatedAt:   nowFunc().UTC(),
	})
}

// Update expects a validated NewPrice.
func (svc *Service) Update(ctx context.Context, userID, id int64, np NewPrice) (Price, error) {
	if err := svc.checkCategory(ctx, userID, np.CategoryID); err != nil {
		return Price{}, err
	}
	return svc.repo.UpdatePrice(ctx, Price{
		ID:          id,
		UserID:      userID,
		VendorName:  np.VendorName,
		ProductName: np.ProductName,
		Spec:        np.Spec,
		Unit:        np.Unit,
		UnitPrice:   *np.UnitPrice,
		CategoryID:  np.CategoryID,
	})
}

func (svc *Service) Delete(ctx context.Context, userID, id int64) error {
	return svc.repo.DeletePrice(ctx, userID, id)
}
