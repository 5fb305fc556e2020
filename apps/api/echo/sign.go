package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/sign"
)

const (
	xlsxMIME           = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	importFileField    = "file"
	importTemplateName = "sign-materials-template.xlsx"
)

type signApi struct {
	svc      *sign.Service
	validate *validator.Validate
}

func registerSignAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *sign.Service, validate *validator.Validate) {
	api := signApi{svc: svc, validate: validate}

	cg := g.Group("/sign-categories", jwt)
	cg.GET("", api.queryCategories)
	cg.POST("", api.createCategory)
	cg.PUT("/:id", api.renameCategory)
	cg.DELETE("/:id", api.destroyCategory)

	sg := g.Group("/sign-subcategories", jwt)
	sg.GET("", api.querySubcategories)
	sg.POST("", api.createSubcategory)
	sg.PUT("/:id", api.renameSubcategory)
	sg.DELETE("/:id", api.destroySubcategory)

	mg := g.Group("/sign-materials", jwt)
	mg.GET("", api.queryMaterials)
	mg.POST("", api.createMaterial)
	mg.POST("/bulk-import", api.bulkImport)
	mg.GET("/import-template", api.importTemplate)
	mg.PUT("/:id", api.updateMaterial)
	mg.DELETE("/:id", api.destroyMaterial)

	fg := g.Group("/finishing-options", jwt)
	fg.GET("", api.queryFinishingOptions)
	fg.POST("", api.createFinishingOption)
	fg.PUT("/:id", api.updateFinishingOption)
	fg.DELETE("/:id", api.destroyFinishingOption)
}

// Categories

func (api *signApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories(ctx.Request().Context(), ctxUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying sign categories")
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *signApi) createCategory(ctx echo.Context) error {
	var data sign.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), ctxUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating sign category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *signApi) renameCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data sign.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.RenameCategory(ctx.Request().Context(), ctxUserID(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "renaming sign category")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *signApi) destroyCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctxUserID(ctx), id); err != nil {
		return errors.Wrap(err, "deleting sign category")
	}
	return ctx.JSON(http.StatusOK, success)
}

// Subcategories

func (api *signApi) querySubcategories(ctx echo.Context) error {
	catID, err := queryID(ctx, "categoryId")
	if err != nil {
		return err
	}
	subs, err := api.svc.QuerySubcategories(ctx.Request().Context(), ctxUserID(ctx), catID)
	if err != nil {
		return errors.Wrap(err, "querying sign subcategories")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *signApi) createSubcategory(ctx echo.Context) error {
	var data sign.NewSubcategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubcategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubcategory(ctx.Request().Context(), ctxUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating sign subcategory")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *signApi) renameSubcategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data sign.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.RenameSubcategory(ctx.Request().Context(), ctxUserID(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "renaming sign subcategory")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *signApi) destroySubcategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSubcategory(ctx.Request().Context(), ctxUserID(ctx), id); err != nil {
		return errors.Wrap(err, "deleting sign subcategory")
	}
	return ctx.JSON(http.StatusOK, success)
}

// Materials

func (api *signApi) queryMaterials(ctx echo.Context) error {
	subID, err := queryID(ctx, "subcategoryId")
	if err != nil {
		return err
	}
	mats, err := api.svc.QueryMaterials(ctx.Request().Context(), ctxUserID(ctx), subID)
	if err != nil {
		return errors.Wrap(err, "querying sign materials")
	}
	return ctx.JSON(http.StatusOK, mats)
}

func (api *signApi) createMaterial(ctx echo.Context) error {
	var data sign.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(api.validate, true); err != nil {
		return err
	}

	mat, err := api.svc.CreateMaterial(ctx.Request().Context(), ctxUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating sign material")
	}
	return ctx.JSON(http.StatusCreated, mat)
}

func (api *signApi) updateMaterial(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data sign.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(api.validate, false); err != nil {
		return err
	}

	mat, err := api.svc.UpdateMaterial(ctx.Request().Context(), ctxUserID(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating sign material")
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *signApi) destroyMaterial(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteMaterial(ctx.Request().Context(), ctxUserID(ctx), id); err != nil {
		return errors.Wrap(err, "deleting sign material")
	}
	return ctx.JSON(http.StatusOK, success)
}

// bulkImport accepts either a JSON {"items": [...]} body or a multipart spreadsheet upload.
func (api *signApi) bulkImport(ctx echo.Context) error {
	var (
		res sign.ImportResult
		err error
	)
	reqCtx := ctx.Request().Context()

	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, fErr := ctx.FormFile(importFileField)
		if fErr != nil {
			return core.NewFieldError(importFileField, "file is required")
		}
		file, fErr := fh.Open()
		if fErr != nil {
			return errors.Wrap(fErr, "opening uploaded file")
		}
		defer file.Close()
		res, err = api.svc.ImportSheet(reqCtx, ctxUserID(ctx), file)
	} else {
		var data sign.BulkImportRequest
		if bErr := ctx.Bind(&data); bErr != nil {
			return errors.Wrap(bErr, "binding to BulkImportRequest")
		}
		res, err = api.svc.BulkImport(reqCtx, ctxUserID(ctx), data.Items)
	}
	if err != nil {
		return errors.Wrap(err, "importing sign materials")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *signApi) importTemplate(ctx echo.Context) error {
	doc, err := api.svc.ImportTemplate()
	if err != nil {
		return errors.Wrap(err, "building import template")
	}
	return attachment(ctx, importTemplateName, xlsxMIME, doc)
}

// Finishing options

func (api *signApi) queryFinishingOptions(ctx echo.Context) error {
	opts, err := api.svc.QueryFinishingOptions(ctx.Request().Context(), ctxUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying finishing options")
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *signApi) createFinishingOption(ctx echo.Context) error {
	var data sign.NewFinishingOption
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFinishingOption")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	opt, err := api.svc.CreateFinishingOption(ctx.Request().Context(), ctxUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating finishing option")
	}
	return ctx.JSON(http.StatusCreated, opt)
}

func (api *signApi) updateFinishingOption(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data sign.NewFinishingOption
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFinishingOption")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	opt, err := api.svc.UpdateFinishingOption(ctx.Request().Context(), ctxUserID(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating finishing option")
	}
	return ctx.JSON(http.StatusOK, opt)
}

func (api *signApi) destroyFinishingOption(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteFinishingOption(ctx.Request().Context(), ctxUserID(ctx), id); err != nil {
		return errors.Wrap(err, "deleting finishing option")
	}
	return ctx.JSON(http.StatusOK, success)
}

// attachment sends a generated document as a download.
func attachment(ctx echo.Context, filename, mime string, doc []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, mime, doc)
}
