// Package sign manages the sign material catalog (category -> subcategory -> material) and finishing options.
package sign

import (
	"context"

	"github.com/pkg/errors"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
)

var (
	ErrCategoryNotFound        = core.NewNotFoundError("sign category not found")
	ErrSubcategoryNotFound     = core.NewNotFoundError("sign subcategory not found")
	ErrMaterialNotFound        = core.NewNotFoundError("sign material not found")
	ErrFinishingOptionNotFound = core.NewNotFoundError("finishing option not found")
)

type (
	// Repository scopes every subcategory and material query through the owning category's user.
	Repository interface {
		CountCategories(ctx context.Context, userID int64, exec ...core.DBExecutor) (int, error)
		QueryCategories(ctx context.Context, userID int64, exec ...core.DBExecutor) ([]Category, error)
		GetCategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (Category, error)
		GetCategoryByName(ctx context.Context, userID int64, name string, exec ...core.DBExecutor) (Category, error)
		CreateCategory(ctx context.Context, c Category, exec ...core.DBExecutor) (Category, error)
		UpdateCategory(ctx context.Context, c Category, exec ...core.DBExecutor) (Category, error)
		DeleteCategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error

		CountSubcategories(ctx context.Context, categoryID int64, exec ...core.DBExecutor) (int, error)
		QuerySubcategories(ctx context.Context, userID int64, categoryID *int64, exec ...core.DBExecutor) ([]Subcategory, error)
		GetSubcategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (Subcategory, error)
		GetSubcategoryByName(ctx context.Context, categoryID int64, name string, exec ...core.DBExecutor) (Subcategory, error)
		CreateSubcategory(ctx context.Context, s Subcategory, exec ...core.DBExecutor) (Subcategory, error)
		UpdateSubcategory(ctx context.Context, userID int64, s Subcategory, exec ...core.DBExecutor) (Subcategory, error)
		DeleteSubcategory(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error

		CountMaterials(ctx context.Context, subcategoryID int64, exec ...core.DBExecutor) (int, error)
		QueryMaterials(ctx context.Context, userID int64, subcategoryID *int64, exec ...core.DBExecutor) ([]Material, error)
		GetMaterial(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (Material, error)
		CreateMaterial(ctx context.Context, m Material, exec ...core.DBExecutor) (Material, error)
		UpdateMaterial(ctx context.Context, userID int64, m Material, exec ...core.DBExecutor) (Material, error)
		DeleteMaterial(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error

		CountFinishingOptions(ctx context.Context, userID int64, exec ...core.DBExecutor) (int, error)
		QueryFinishingOptions(ctx context.Context, userID int64, exec ...core.DBExecutor) ([]FinishingOption, error)
		CreateFinishingOption(ctx context.Context, f FinishingOption, exec ...core.DBExecutor) (FinishingOption, error)
		UpdateFinishingOption(ctx context.Context, f FinishingOption, exec ...core.DBExecutor) (FinishingOption, error)
		DeleteFinishingOption(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error
	}

	Service struct {
		db    core.DB
		repo  Repository
		codec SheetCodec
	}
)

func NewService(db core.DB, repo Repository, codec SheetCodec) *Service {
	return &Service{db: db, repo: repo, codec: codec}
}

// Categories

func (svc *Service) QueryCategories(ctx context.Context, userID int64) ([]Category, error) {
	return svc.repo.QueryCategories(ctx, userID)
}

// CreateCategory appends a category: its sort order is the current number of categories.
func (svc *Service) CreateCategory(ctx context.Context, userID int64, nc NewCategory) (Category, error) {
	var cat Category
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		cat, err = svc.createCategory(ctx, userID, nc.Name, tx)
		return err
	})
	return cat, err
}

func (svc *Service) createCategory(ctx context.Context, userID int64, name string, exec core.DBExecutor) (Category, error) {
	cnt, err := svc.repo.CountCategories(ctx, userID, exec)
	if err != nil {
		return Category{}, errors.Wrap(err, "counting categories")
	}
	return svc.repo.CreateCategory(ctx, Category{UserID: userID, Name: name, SortOrder: cnt}, exec)
}

func (svc *Service) RenameCategory(ctx context.Context, userID, id int64, nc NewCategory) (Category, error) {
	return svc.repo.UpdateCategory(ctx, Category{ID: id, UserID: userID, Name: nc.Name})
}

// DeleteCategory removes the category with all its subcategories and materials.
func (svc *Service) DeleteCategory(ctx context.Context, userID, id int64) error {
	return svc.repo.DeleteCategory(ctx, userID, id)
}

// Subcategories

func (svc *Service) QuerySubcategories(ctx context.Context, userID int64, categoryID *int64) ([]Subcategory, error) {
	return svc.repo.QuerySubcategories(ctx, userID, categoryID)
}

func (svc *Service) CreateSubcategory(ctx context.Context, userID int64, ns NewSubcategory) (Subcategory, error) {
	var sub Subcategory
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetCategory(ctx, userID, ns.CategoryID, tx); err != nil {
			return err
		}
		var err error
		sub, err = svc.createSubcategory(ctx, ns.CategoryID, ns.Name, tx)
		return err
	})
	return sub, err
}

func (svc *Service) createSubcategory(ctx context.Context, categoryID int64, name string, exec core.DBExecutor) (Subcategory, error) {
	cnt, err := svc.repo.CountSubcategories(ctx, categoryID, exec)
	if err != nil {
		return Subcategory{}, errors.Wrap(err, "counting subcategories")
	}
	return svc.repo.CreateSubcategory(ctx, Subcategory{CategoryID: categoryID, Name: name, SortOrder: cnt}, exec)
}

func (svc *Service) RenameSubcategory(ctx context.Context, userID, id int64, nc NewCategory) (Subcategory, error) {
	return svc.repo.UpdateSubcategory(ctx, userID, Subcategory{ID: id, Name: nc.Name})
}

// DeleteSubcategory removes the subcategory with all its materials.
func (svc *Service) DeleteSubcategory(ctx context.Context, userID, id int64) error {
	return svc.repo.DeleteSubcategory(ctx, userID, id)
}

// Materials

func (svc *Service) QueryMaterials(ctx context.Context, userID int64, subcategoryID *int64) ([]Material, error) {
	return svc.repo.QueryMaterials(ctx, userID, subcategoryID)
}

func (svc *Service) CreateMaterial(ctx context.Context, userID int64, nm NewMaterial) (Material, error) {
	var mat Material
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetSubcategory(ctx, userID, nm.SubcategoryID, tx); err != nil {
			return err
		}
		var err error
		mat, err = svc.createMaterial(ctx, Material{
			SubcategoryID: nm.SubcategoryID,
			Name:          nm.Name,
			CalcType:      pricing.NormalizeCalcType(nm.CalcType),
			UnitPrice:     nm.UnitPrice,
			UnitLabel:     nm.UnitLabel,
			Note:          nm.Note,
		}, tx)
		return err
	})
	return mat, err
}

func (svc *Service) createMaterial(ctx context.Context, m Material, exec core.DBExecutor) (Material, error) {
	cnt, err := svc.repo.CountMaterials(ctx, m.SubcategoryID, exec)
	if err != nil {
		return Material{}, errors.Wrap(err, "counting materials")
	}
	m.SortOrder = cnt
	return svc.repo.CreateMaterial(ctx, m, exec)
}

func (svc *Service) UpdateMaterial(ctx context.Context, userID, id int64, nm NewMaterial) (Material, error) {
	return svc.repo.UpdateMaterial(ctx, userID, Material{
		ID:        id,
		Name:      nm.Name,
		CalcType:  pricing.NormalizeCalcType(nm.CalcType),
		UnitPrice: nm.UnitPrice,
		UnitLabel: nm.UnitLabel,
		Note:      nm.Note,
	})
}

func (svc *Service) DeleteMaterial(ctx context.Context, userID, id int64) error {
	return svc.repo.DeleteMaterial(ctx, userID, id)
}

// Finishing options

func (svc *Service) QueryFinishingOptions(ctx context.Context, userID int64) ([]FinishingOption, error) {
	return svc.repo.QueryFinishingOptions(ctx, userID)
}

func (svc *Service) CreateFinishingOption(ctx context.Context, userID int64, nf NewFinishingOption) (FinishingOption, error) {
	var opt FinishingOption
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		cnt, err := svc.repo.CountFinishingOptions(ctx, userID, tx)
		if err != nil {
			return errors.Wrap(err, "counting finishing options")
		}
		opt, err = svc.repo.CreateFinishingOption(ctx, FinishingOption{
			UserID:    userID,
			Name:      nf.Name,
			UnitType:  pricing.NormalizeUnitType(nf.UnitType),
			UnitPrice: nf.UnitPrice,
			IsActive:  nf.active(),
			SortOrder: cnt,
		}, tx)
		return err
	})
	return opt, err
}

func (svc *Service) UpdateFinishingOption(ctx context.Context, userID, id int64, nf NewFinishingOption) (FinishingOption, error) {
	return svc.repo.UpdateFinishingOption(ctx, FinishingOption{
		ID:        id,
		UserID:    userID,
		Name:      nf.Name,
		UnitType:  pricing.NormalizeUnitType(nf.UnitType),
		UnitPrice: nf.UnitPrice,
		IsActive:  nf.active(),
	})
}

func (svc *Service) DeleteFinishingOption(ctx context.Context, userID, id int64) error {
	return svc.repo.DeleteFinishingOption(ctx, userID, id)
}
