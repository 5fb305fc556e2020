package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/signquick/signquick/core/catalog"
)

type catalogApi struct {
	svc      *catalog.Service
	validate *validator.Validate
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *catalog.Service, validate *validator.Validate) {
	api := catalogApi{svc: svc, validate: validate}

	cg := g.Group("/categories", jwt)
	cg.GET("", api.queryCategories)
	cg.POST("", api.createCategory)
	cg.PUT("/:id", api.renameCategory)
	cg.DELETE("/:id", api.destroyCategory)

	og := g.Group("/options", jwt)
	og.GET("", api.queryOptions)
	og.GET("/category/:categoryId", api.queryCategoryOptions)
	og.POST("", api.createOption)
	og.PUT("/:id", api.updateOption)
	og.DELETE("/:id", api.destroyOption)
}

// Categories

func (api *catalogApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories(ctx.Request().Context(), ctxUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *catalogApi) createCategory(ctx echo.Context) error {
	var data catalog.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), ctxUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *catalogApi) renameCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data catalog.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.RenameCategory(ctx.Request().Context(), ctxUserID(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "renaming category")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) destroyCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctxUserID(ctx), id); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return ctx.JSON(http.StatusOK, success)
}

// Options

func (api *catalogApi) queryOptions(ctx echo.Context) error {
	opts, err := api.svc.QueryFlatOptions(ctx.Request().Context(), ctxUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying options")
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *catalogApi) queryCategoryOptions(ctx echo.Context) error {
	catID, err := pathID(ctx, "categoryId")
	if err != nil {
		return err
	}
	opts, err := api.svc.QueryCategoryOptions(ctx.Request().Context(), ctxUserID(ctx), catID)
	if err != nil {
		return errors.Wrap(err, "querying category options")
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *catalogApi) createOption(ctx echo.Context) error {
	var data catalog.NewOption
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOption")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	opt, err := api.svc.CreateOption(ctx.Request().Context(), ctxUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating option")
	}
	return ctx.JSON(http.StatusCreated, opt)
}

func (api *catalogApi) updateOption(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data catalog.NewOption
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOption")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	opt, err := api.svc.UpdateOption(ctx.Request().Context(), ctxUserID(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating option")
	}
	return ctx.JSON(http.StatusOK, opt)
}

func (api *catalogApi) destroyOption(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteOption(ctx.Request().Context(), ctxUserID(ctx), id); err != nil {
		return errors.Wrap(err, "deleting option")
	}
	return ctx.JSON(http.StatusOK, success)
}
