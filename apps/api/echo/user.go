package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/signquick/signquick/core/user"
)

type (
	AuthResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	MeResponse struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
)

type userApi struct {
	svc      *user.Service
	auth     *Auth
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *Auth, svc *user.Service, validate *validator.Validate) {
	api := userApi{svc: svc, auth: auth, validate: validate}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)

	// authed endpoints
	ag.GET("/me", api.me, jwt)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}

	res, err := api.authResponse(usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}

	res, err := api.authResponse(usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *userApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MeResponse{ID: claims.UserID, Username: claims.Username})
}

func (api *userApi) authResponse(usr user.User) (AuthResponse, error) {
	token, err := api.auth.GenerateToken(api.auth.UserClaims(usr))
	if err != nil {
		return AuthResponse{}, errors.Wrap(err, "generating token")
	}
	return AuthResponse{Token: token, User: usr}, nil
}
