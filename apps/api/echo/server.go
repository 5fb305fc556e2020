package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/catalog"
	"github.com/signquick/signquick/core/price"
	"github.com/signquick/signquick/core/pricing"
	"github.com/signquick/signquick/core/quote"
	"github.com/signquick/signquick/core/sign"
	"github.com/signquick/signquick/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
		Shutdown       func() // called when a core.shutdown error is caught

		UserSvc    *user.Service
		PriceSvc   *price.Service
		CatalogSvc *catalog.Service
		SignSvc    *sign.Service
		QuoteSvc   *quote.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
		auth *Auth
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Validate == nil || opts.Translator == nil {
		opts.Validate, opts.Translator = NewValidator()
	}
	if opts.Shutdown == nil {
		opts.Shutdown = func() {}
	}
	// money is sent as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
	s := &server{
		opts: opts,
		app:  echo.New(),
		auth: NewAuth(opts.Conf),
	}
	s.setup()
	return s
}

// NewValidator returns the validator with every custom tag the API uses.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	pricing.RegisterValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	return validate, translator
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: conf.Server.CORSAllowOrigins}))
	s.app.Use(middleware.BodyLimit("10M"))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.Shutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/health", health)

	g := s.app.Group("/api")
	jwt := jwtMiddleware(s.auth)

	registerUserAPI(g, jwt, s.auth, s.opts.UserSvc, s.opts.Validate)
	registerPriceAPI(g, jwt, s.opts.PriceSvc, s.opts.Validate)
	registerCatalogAPI(g, jwt, s.opts.CatalogSvc, s.opts.Validate)
	registerSignAPI(g, jwt, s.opts.SignSvc, s.opts.Validate)
	registerQuoteAPI(g, jwt, s.opts.QuoteSvc, s.opts.Validate)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
