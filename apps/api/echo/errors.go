package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/user"
)

var (
	errMissingToken   = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errSessionExpired = echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
	errInternal       = http.StatusText(http.StatusInternalServerError)
)

type (
	errorResponse struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields,omitempty"`
	}

	SuccessResponse struct {
		Success bool `json:"success"`
	}
)

var success = SuccessResponse{Success: true}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var res errorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			res.Error = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			res.Fields = make(map[string]string, len(origErr))
			for i, vErr := range origErr {
				msg := vErr.Translate(translator)
				if i == 0 {
					res.Error = msg
				}
				res.Fields[fieldName(vErr)] = msg
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			res.Error = origErr.Error()
			if len(origErr.Fields) > 0 {
				res.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					res.Fields[fErr.Field] = fErr.Error
				}
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			res.Error = origErr.Error()
		default:
			switch origErr {
			case user.ErrUsernameExists:
				code = http.StatusConflict
				res.Error = origErr.Error()
			case user.ErrInvalidCredentials:
				code = http.StatusUnauthorized
				res.Error = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				res.Error = errInternal

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.UserID
					usr.Username = claims.Username
				}
				extras := map[string]interface{}{
					"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
					"route":      ctx.Path(),
				}
				logger.Error(errInternal, errors.Wrap(err, errInternal), usr, ctx.Request(), extras)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// fieldName is the JSON path of the field: items[0].product_name rather than product_name.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			return ns[i+1:]
		}
	}
	return fe.Field()
}
