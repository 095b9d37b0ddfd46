package echoapi

import (
	"encoding/gob"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	sessionName       = "scolarite_session"
	sessionUserIDKey  = "user_id"
	sessionIsAdminKey = "is_admin"
	contextSessionKey = "appSession"
	csrfFormField     = "_csrf"

	flashDanger = "danger"
)

// Session is the authentication state carried by the session cookie.
// The zero value is an anonymous visitor.
type Session struct {
	UserID  int
	IsAdmin bool
}

func (s Session) IsAuthenticated() bool {
	return s.UserID != 0
}

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// cookieSession returns the raw session; an undecodable cookie yields a fresh session.
func cookieSession(ctx echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(sessionName, ctx)
	if sess == nil {
		return nil, errors.Wrap(err, "getting session")
	}
	return sess, nil
}

// getSession returns the Session loaded by sessionMiddleware.
func getSession(ctx echo.Context) Session {
	if sess, ok := ctx.Get(contextSessionKey).(Session); ok {
		return sess
	}
	return Session{}
}

func loadSession(ctx echo.Context) (Session, error) {
	sess, err := cookieSession(ctx)
	if err != nil {
		return Session{}, err
	}
	var s Session
	if id, ok := sess.Values[sessionUserIDKey].(int); ok {
		s.UserID = id
	}
	if isAdmin, ok := sess.Values[sessionIsAdminKey].(bool); ok {
		s.IsAdmin = isAdmin
	}
	return s, nil
}

// saveSession replaces the authentication state with `s`.
func saveSession(ctx echo.Context, s Session) error {
	sess, err := cookieSession(ctx)
	if err != nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{
		sessionUserIDKey:  s.UserID,
		sessionIsAdminKey: s.IsAdmin,
	}
	if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "saving session")
	}
	ctx.Set(contextSessionKey, s)
	return nil
}

// clearSession drops every session value and expires the cookie.
func clearSession(ctx echo.Context) error {
	sess, err := cookieSession(ctx)
	if err != nil {
		return err
	}
	sess.Values = make(map[interface{}]interface{})
	sess.Options.MaxAge = -1
	if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	ctx.Set(contextSessionKey, Session{})
	return nil
}

func addFlash(ctx echo.Context, category, message string) error {
	sess, err := cookieSession(ctx)
	if err != nil {
		return err
	}
	sess.AddFlash(Flash{Category: category, Message: message})
	return errors.Wrap(sess.Save(ctx.Request(), ctx.Response()), "saving flash")
}

// popFlashes consumes the pending flash messages.
func popFlashes(ctx echo.Context) ([]Flash, error) {
	sess, err := cookieSession(ctx)
	if err != nil {
		return nil, err
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes, errors.Wrap(sess.Save(ctx.Request(), ctx.Response()), "saving session")
}
