package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/signquick/signquick/core/quote"
)

const pdfMIME = "application/pdf"

type quoteApi struct {
	svc      *quote.Service
	validate *validator.Validate
}

func registerQuoteAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *quote.Service, validate *validator.Validate) {
	api := quoteApi{svc: svc, validate: validate}

	qg := g.Group("/quotes", jwt)
	qg.GET("", api.query)
	qg.POST("", api.create)
	qg.POST("/preview", api.preview)

	// detail endpoints
	dg := qg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
	dg.POST("/send", api.send)
	dg.GET("/pdf", api.pdf)
	dg.GET("/xlsx", api.xlsx)
}

// Handlers

func (api *quoteApi) query(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	quotes, err := api.svc.List(ctx.Request().Context(), ctxUserID(ctx), ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying quotes")
	}
	return ctx.JSON(http.StatusOK, quotes)
}

func (api *quoteApi) bindNewQuote(ctx echo.Context) (quote.NewQuote, error) {
	var data quote.NewQuote
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to NewQuote")
	}
	return data, data.Validate(api.validate)
}

func (api *quoteApi) create(ctx echo.Context) error {
	data, err := api.bindNewQuote(ctx)
	if err != nil {
		return err
	}

	q, err := api.svc.Create(ctx.Request().Context(), ctxUserID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating quote")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *quoteApi) preview(ctx echo.Context) error {
	data, err := api.bindNewQuote(ctx)
	if err != nil {
		return err
	}

	q, err := api.svc.Preview(data)
	if err != nil {
		return errors.Wrap(err, "pricing quote")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quoteApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	q, err := api.svc.Get(ctx.Request().Context(), ctxUserID(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting quote")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quoteApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctxUserID(ctx), id); err != nil {
		return errors.Wrap(err, "deleting quote")
	}
	return ctx.JSON(http.StatusOK, success)
}

func (api *quoteApi) send(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data quote.SendRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Send(ctx.Request().Context(), ctxUserID(ctx), id, data); err != nil {
		return errors.Wrap(err, "sending quote")
	}
	return ctx.JSON(http.StatusOK, success)
}

func (api *quoteApi) pdf(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	q, doc, err := api.svc.PDF(ctx.Request().Context(), ctxUserID(ctx), id)
	if err != nil {
		return errors.Wrap(err, "exporting quote pdf")
	}
	return attachment(ctx, q.QuoteNumber+".pdf", pdfMIME, doc)
}

func (api *quoteApi) xlsx(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	q, doc, err := api.svc.Excel(ctx.Request().Context(), ctxUserID(ctx), id)
	if err != nil {
		return errors.Wrap(err, "exporting quote xlsx")
	}
	return attachment(ctx, q.QuoteNumber+".xlsx", xlsxMIME, doc)
}
