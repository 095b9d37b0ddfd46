package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/core/user"
)

const msgBadCredentials = "Identifiants incorrects."

// loginForm is posted by both login pages.
type loginForm struct {
	Matricule string `form:"matricule" validate:"required"`
	Password  string `form:"password" validate:"required"`
}

type studentPortal struct {
	usrSvc   *user.Service
	gradeSvc *grade.Service
	validate *validator.Validate
	metrics  *metrics
}

func registerStudentPortal(e *echo.Echo, deps ServerDeps, m *metrics) {
	portal := studentPortal{
		usrSvc:   deps.UserSvc,
		gradeSvc: deps.GradeSvc,
		validate: deps.Validate,
		metrics:  m,
	}

	e.GET("/", portal.home)
	e.GET("/login", portal.loginPage)
	e.POST("/login", portal.login)
	e.GET("/dashboard", portal.dashboard, authMiddleware)
	e.GET("/logout", portal.logout)
}

// authenticate binds and checks the login form against the student or the administrator pool.
// Bad input and bad credentials both yield user.ErrInvalidCredentials.
func authenticate(
	ctx echo.Context,
	validate *validator.Validate,
	svc *user.Service,
	isAdmin bool,
) (user.User, loginForm, error) {
	var form loginForm
	if err := ctx.Bind(&form); err != nil {
		return user.User{}, form, user.ErrInvalidCredentials
	}
	if err := validate.Struct(form); err != nil {
		return user.User{}, form, user.ErrInvalidCredentials
	}
	usr, err := svc.Authenticate(ctx.Request().Context(), form.Matricule, form.Password, isAdmin)
	return usr, form, err
}

// Handlers

func (p *studentPortal) home(ctx echo.Context) error {
	return render(ctx, http.StatusOK, "index", "Accueil", nil)
}

func (p *studentPortal) loginPage(ctx echo.Context) error {
	return render(ctx, http.StatusOK, "login", "Connexion", nil)
}

func (p *studentPortal) login(ctx echo.Context) error {
	usr, form, err := authenticate(ctx, p.validate, p.usrSvc, false)
	if err != nil {
		if errors.Cause(err) != user.ErrInvalidCredentials {
			return errors.Wrap(err, "authenticating student")
		}
		p.metrics.loginAttempt(portalStudent, false)
		return render(ctx, http.StatusOK, "login", "Connexion", echo.Map{
			"error":     msgBadCredentials,
			"matricule": form.Matricule,
		})
	}

	if err = saveSession(ctx, Session{UserID: usr.ID, IsAdmin: false}); err != nil {
		return err
	}
	p.metrics.loginAttempt(portalStudent, true)
	return ctx.Redirect(http.StatusFound, "/dashboard")
}

func (p *studentPortal) dashboard(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	usr, err := p.usrSvc.GetByID(rctx, getSession(ctx).UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			// the session outlived its user
			if err = clearSession(ctx); err != nil {
				return err
			}
			return ctx.Redirect(http.StatusFound, "/login")
		}
		return errors.Wrap(err, "finding session user")
	}

	report, err := p.gradeSvc.StudentReport(rctx, usr.ID)
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, "dashboard", "Mes notes", echo.Map{
		"user":    usr,
		"grades":  report.Grades,
		"average": report.Average,
	})
}

func (p *studentPortal) logout(ctx echo.Context) error {
	if err := clearSession(ctx); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/")
}
