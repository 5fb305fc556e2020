// Package catalog manages the product categories and their priced options.
package catalog

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/signquick/signquick/core"
)

var (
	ErrCategoryNotFound = core.NewNotFoundError("category not found")
	ErrOptionNotFound   = core.NewNotFoundError("option not found")

	optionTypeFlat = "flat"
)

type Category struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"-"`
	Name   string `json:"name"`
}

type Option struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"-"`
	CategoryID null.Int64    `json:"category_id"`
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Values     []OptionValue `json:"values"`
}

type OptionValue struct {
	ID         int64           `json:"id"`
	OptionID   int64           `json:"option_id"`
	Value      string          `json:"value"`
	ExtraPrice decimal.Decimal `json:"extra_price"`
}

// FlatOption is the single-valued view of an Option.
type FlatOption struct {
	ID         int64           `json:"id"`
	CategoryID null.Int64      `json:"category_id"`
	Label      string          `json:"label"`
	Type       string          `json:"type"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// Flatten uses the first value's extra price as the option's price delta.
func (o Option) Flatten() FlatOption {
	fo := FlatOption{ID: o.ID, CategoryID: o.CategoryID, Label: o.Name, Type: o.Type, PriceDelta: decimal.Zero}
	if len(o.Values) > 0 {
		fo.PriceDelta = o.Values[0].ExtraPrice
	}
	return fo
}

type NewCategory struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// NewOption is used to create and to update a flat Option.
type NewOption struct {
	Label      string          `json:"label" validate:"required"`
	PriceDelta decimal.Decimal `json:"price_delta"`
	CategoryID null.Int64      `json:"category_id"`
}

func (no *NewOption) Validate(validate *validator.Validate) error {
	no.Label = core.CleanString(no.Label)
	return validate.Struct(no)
}

type (
	Repository interface {
		QueryCategories(ctx context.Context, userID int64) ([]Category, error)
		GetCategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (Category, error)
		CreateCategory(ctx context.Context, c Category) (Category, error)
		UpdateCategory(ctx context.Context, c Category) (Category, error)
		DeleteCategory(ctx context.Context, userID, id int64) error

		// QueryOptions returns the options with their values; a nil categoryID returns all of them.
		QueryOptions(ctx context.Context, userID int64, categoryID *int64) ([]Option, error)
		GetOption(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (Option, error)
		CreateOption(ctx context.Context, o Option, exec ...core.DBExecutor) (Option, error)
		UpdateOption(ctx context.Context, o Option, exec ...core.DBExecutor) (Option, error)
		CreateOptionValue(ctx context.Context, v OptionValue, exec ...core.DBExecutor) (OptionValue, error)
		UpdateOptionValue(ctx context.Context, v OptionValue, exec ...core.DBExecutor) (OptionValue, error)
		DeleteOption(ctx context.Context, userID, id int64) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) QueryCategories(ctx context.Context, userID int64) ([]Category, error) {
	return svc.repo.QueryCategories(ctx, userID)
}

func (svc *Service) CreateCategory(ctx context.Context, userID int64, nc NewCategory) (Category, error) {
	return svc.repo.CreateCategory(ctx, Category{UserID: userID, Name: nc.Name})
}

func (svc *Service) RenameCategory(ctx context.Context, userID, id int64, nc NewCategory) (Category, error) {
	return svc.repo.UpdateCategory(ctx, Category{ID: id, UserID: userID, Name: nc.Name})
}

// DeleteCategory removes the category with its options; prices keep their row without a category.
func (svc *Service) DeleteCategory(ctx context.Context, userID, id int64) error {
	return svc.repo.DeleteCategory(ctx, userID, id)
}

func (svc *Service) QueryFlatOptions(ctx context.Context, userID int64) ([]FlatOption, error) {
	opts, err := svc.repo.QueryOptions(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	flat := make([]FlatOption, 0, len(opts))
	for _, o := range opts {
		flat = append(flat, o.Flatten())
	}
	return flat, nil
}

func (svc *Service) QueryCategoryOptions(ctx context.Context, userID, categoryID int64) ([]Option, error) {
	return svc.repo.QueryOptions(ctx, userID, &categoryID)
}

func (svc *Service) checkCategory(ctx context.Context, userID int64, categoryID null.Int64, exec core.DBExecutor) error {
	if !categoryID.Valid {
		return nil
	}
	_, err := svc.repo.GetCategory(ctx, userID, categoryID.Int64, exec)
	return err
}

// CreateOption stores a flat option: the option row and its single value.
func (svc *Service) CreateOption(ctx context.Context, userID int64, no NewOption) (FlatOption, error) {
	var opt Option
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.checkCategory(ctx, userID, no.CategoryID, tx); err != nil {
			return err
		}

		var err error
		opt, err = svc.repo.CreateOption(ctx, Option{
			UserID:     userID,
			CategoryID: no.CategoryID,
			Name:       no.Label,
			Type:       optionTypeFlat,
		}, tx)
		if err != nil {
			return err
		}

		val, err := svc.repo.CreateOptionValue(ctx, OptionValue{
			OptionID:   opt.ID,
			Value:      no.Label,
			ExtraPrice: no.PriceDelta,
		}, tx)
		if err != nil {
			return err
		}
		opt.Values = []OptionValue{val}
		return nil
	})
	if err != nil {
		return FlatOption{}, err
	}
	return opt.Flatten(), nil
}

// UpdateOption renames the option and reprices its first value (created when missing).
func (svc *Service) UpdateOption(ctx context.Context, userID, id int64, no NewOption) (FlatOption, error) {
	var opt Option
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if opt, err = svc.repo.GetOption(ctx, userID, id, tx); err != nil {
			return err
		}
		if err = svc.checkCategory(ctx, userID, no.CategoryID, tx); err != nil {
			return err
		}

		opt.Name = no.Label
		opt.CategoryID = no.CategoryID
		if opt, err = svc.repo.UpdateOption(ctx, opt, tx); err != nil {
			return err
		}

		if len(opt.Values) == 0 {
			val, err := svc.repo.CreateOptionValue(ctx, OptionValue{OptionID: opt.ID, Value: no.Label, ExtraPrice: no.PriceDelta}, tx)
			if err != nil {
				return err
			}
			opt.Values = []OptionValue{val}
			return nil
		}
		val := opt.Values[0]
		val.Value = no.Label
		val.ExtraPrice = no.PriceDelta
		if opt.Values[0], err = svc.repo.UpdateOptionValue(ctx, val, tx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return FlatOption{}, err
	}
	return opt.Flatten(), nil
}

func (svc *Service) DeleteOption(ctx context.Context, userID, id int64) error {
	return svc.repo.DeleteOption(ctx, userID, id)
}
