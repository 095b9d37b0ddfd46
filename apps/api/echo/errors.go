package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/user"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering the error page.
// Server errors are reported through `logger` along with the session user.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message string
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(code)

			sess := getSession(ctx)
			logger.Error(message, errors.Wrap(err, message), user.User{ID: sess.UserID, IsAdmin: sess.IsAdmin})
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = render(ctx, code, "error", http.StatusText(code), echo.Map{"code": code, "message": message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
