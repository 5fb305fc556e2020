package sign

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
)

type Category struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"-"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type Subcategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	SortOrder  int    `json:"sort_order"`
}

type Material struct {
	ID            int64            `json:"id"`
	SubcategoryID int64            `json:"subcategory_id"`
	Name          string           `json:"name"`
	CalcType      pricing.CalcType `json:"calc_type"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	UnitLabel     string           `json:"unit_label"`
	Note          string           `json:"note"`
	SortOrder     int              `json:"sort_order"`
}

type FinishingOption struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"-"`
	Name      string           `json:"name"`
	UnitType  pricing.UnitType `json:"unit_type"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	IsActive  bool             `json:"is_active"`
	SortOrder int              `json:"sort_order"`
}

// NewCategory is used to create and to rename categories and subcategories.
type NewCategory struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type NewSubcategory struct {
	CategoryID int64  `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
}

func (ns *NewSubcategory) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// NewMaterial is used to create and to update materials. SubcategoryID is ignored on updates.
// Unknown calc types fall back to unit.
type NewMaterial struct {
	SubcategoryID int64           `json:"subcategory_id"`
	Name          string          `json:"name" validate:"required"`
	CalcType      string          `json:"calc_type"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	UnitLabel     string          `json:"unit_label"`
	Note          string          `json:"note"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate, create bool) error {
	nm.Name = core.CleanString(nm.Name)
	nm.CalcType = core.CleanString(nm.CalcType, true /* lower */)
	nm.UnitLabel = core.CleanString(nm.UnitLabel)
	nm.Note = core.CleanString(nm.Note)

	if create && nm.SubcategoryID == 0 {
		return core.NewFieldError("subcategory_id", "subcategory_id is required")
	}
	if err := validate.Struct(nm); err != nil {
		return err
	}
	if nm.UnitPrice.IsNegative() {
		return core.NewFieldError("unit_price", "unit_price must be 0 or greater")
	}
	return nil
}

// NewFinishingOption is used to create and to update finishing options.
// Unknown unit types fall back to ea; IsActive defaults to true.
type NewFinishingOption struct {
	Name      string          `json:"name" validate:"required"`
	UnitType  string          `json:"unit_type"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	IsActive  *bool           `json:"is_active"`
}

func (nf *NewFinishingOption) Validate(validate *validator.Validate) error {
	nf.Name = core.CleanString(nf.Name)
	nf.UnitType = core.CleanString(nf.UnitType, true /* lower */)

	if err := validate.Struct(nf); err != nil {
		return err
	}
	if nf.UnitPrice.IsNegative() {
		return core.NewFieldError("unit_price", "unit_price must be 0 or greater")
	}
	return nil
}

func (nf NewFinishingOption) active() bool {
	return nf.IsActive == nil || *nf.IsActive
}
