package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const msgAdminOnly = "Accès réservé à l'administration."

// sessionMiddleware attaches the request Session to the echo.Context.
func sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := loadSession(ctx)
		if err != nil {
			return err
		}
		ctx.Set(contextSessionKey, sess)
		return next(ctx)
	}
}

// authMiddleware lets authenticated sessions through and sends anyone else to the student login.
func authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !getSession(ctx).IsAuthenticated() {
			return ctx.Redirect(http.StatusFound, "/login")
		}
		return next(ctx)
	}
}

// adminMiddleware only lets administrator sessions through.
func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !getSession(ctx).IsAdmin {
			if err := addFlash(ctx, flashDanger, msgAdminOnly); err != nil {
				return err
			}
			return ctx.Redirect(http.StatusFound, "/admin/login")
		}
		return next(ctx)
	}
}
