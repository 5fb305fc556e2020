package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// jwtMiddleware authenticates the request from its bearer token and stores the claims in the context.
func jwtMiddleware(auth *Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				return errMissingToken
			}
			token := strings.TrimSpace(header[len(bearerPrefix):])
			if token == "" {
				return errMissingToken
			}

			claims, err := auth.ParseToken(token)
			if err != nil {
				return errSessionExpired
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}
