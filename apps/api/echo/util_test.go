package echoapi

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/core/user"
	"github.com/trezcool/scolarite/storage/database/sqlx"
	"github.com/trezcool/scolarite/tests"
)

var baseURL, _ = url.Parse("http://example.com/")

type testLogger struct {
	t *testing.T
}

var _ core.Logger = testLogger{}

func (l testLogger) log(level, msg string, args []interface{}) {
	l.t.Log(append([]interface{}{level, msg}, args...)...)
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatal(append([]interface{}{msg}, args...)...) }

func testConfig(csrf bool) *core.Config {
	conf := &core.Config{
		Env:       "TEST",
		AppName:   "Scolarité",
		TestMode:  true,
		SecretKey: "test-secret-key",
	}
	conf.Server.SessionMaxAge = time.Hour
	conf.Server.DisableCSRF = !csrf
	conf.Server.DisableReqLogs = true
	return conf
}

type testApp struct {
	server  *Server
	usrRepo user.Repository
	grdRepo grade.Repository
}

func setup(t *testing.T, csrf bool) testApp {
	t.Helper()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	grdRepo := sqlxrepos.NewGradeRepository(db)

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	server, err := NewServer(ServerDeps{
		Conf:     testConfig(csrf),
		Logger:   testLogger{t: t},
		UserSvc:  user.NewService(usrRepo),
		GradeSvc: grade.NewService(grdRepo, validate),
		Validate: validate,
	})
	if err != nil {
		t.Fatalf("NewServer(): %v", err)
	}
	return testApp{server: server, usrRepo: usrRepo, grdRepo: grdRepo}
}

// client replays the cookies it receives, like a browser.
type client struct {
	t      *testing.T
	server http.Handler
	jar    *cookiejar.Jar
}

func newClient(t *testing.T, server http.Handler) *client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New(): %v", err)
	}
	return &client{t: t, server: server, jar: jar}
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, ck := range c.jar.Cookies(baseURL) {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.server.ServeHTTP(rec, req)
	c.jar.SetCookies(baseURL, rec.Result().Cookies())
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil)
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, form)
}

func (c *client) cookie(name string) string {
	for _, ck := range c.jar.Cookies(baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func credentials(matricule, pwd string) url.Values {
	return url.Values{"matricule": {matricule}, "password": {pwd}}
}
