package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/core/user"
)

const msgBadAdminCredentials = "Identifiants admin incorrects."

type adminPortal struct {
	usrSvc   *user.Service
	gradeSvc *grade.Service
	validate *validator.Validate
	metrics  *metrics
}

func registerAdminPortal(g *echo.Group, deps ServerDeps, m *metrics) {
	portal := adminPortal{
		usrSvc:   deps.UserSvc,
		gradeSvc: deps.GradeSvc,
		validate: deps.Validate,
		metrics:  m,
	}

	g.GET("/login", portal.loginPage)
	g.POST("/login", portal.login)
	g.GET("/dashboard", portal.dashboard, adminMiddleware)
}

// Handlers

func (p *adminPortal) loginPage(ctx echo.Context) error {
	return render(ctx, http.StatusOK, "admin_login", "Connexion administration", nil)
}

func (p *adminPortal) login(ctx echo.Context) error {
	usr, form, err := authenticate(ctx, p.validate, p.usrSvc, true)
	if err != nil {
		if errors.Cause(err) != user.ErrInvalidCredentials {
			return errors.Wrap(err, "authenticating admin")
		}
		p.metrics.loginAttempt(portalAdmin, false)
		return render(ctx, http.StatusOK, "admin_login", "Connexion administration", echo.Map{
			"error":     msgBadAdminCredentials,
			"matricule": form.Matricule,
		})
	}

	if err = saveSession(ctx, Session{UserID: usr.ID, IsAdmin: true}); err != nil {
		return err
	}
	p.metrics.loginAttempt(portalAdmin, true)
	return ctx.Redirect(http.StatusFound, "/admin/dashboard")
}

func (p *adminPortal) dashboard(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	flagged, err := p.gradeSvc.FlaggedGrades(rctx)
	if err != nil {
		return err
	}
	students, err := p.usrSvc.QueryStudents(rctx)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return render(ctx, http.StatusOK, "admin_dashboard", "Administration", echo.Map{
		"flagged":  flagged,
		"students": students,
	})
}
