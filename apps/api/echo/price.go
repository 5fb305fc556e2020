package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/signquick/signquick/core/price"
)

type priceApi struct {
	svc      *price.Service
	validate *validator.Validate
}

func registerPriceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *price.Service, validate *validator.Validate) {
	api := priceApi{svc: svc, validate: validate}

	pg := g.Group("/prices", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)

	g.GET("/vendors", api.vendors, jwt)
}

// Handlers

func (api *priceApi) query(ctx echo.Context) error {
	var filter price.QueryFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	prices, err := api.svc.Query(ctx.Request().Context(), ctxUserID(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying prices")
	}
	return ctx.JSON(http.StatusOK, prices)
}

func (api *priceApi) vendors(ctx echo.Context) error {
	vendors, err := api.svc.Vendors(ctx.Request().Context(), ctxUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying vendors")
	}
	return ctx.JSON(http.StatusOK, vendors)
}

func (api *priceApi) create(ctx echo.Context) error {
	var data price.NewPrice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), ctxUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating price")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *priceApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data price.NewPrice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), ctxUserID(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating price")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *priceApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctxUserID(ctx), id); err != nil {
		return errors.Wrap(err, "deleting price")
	}
	return ctx.JSON(http.StatusOK, success)
}
