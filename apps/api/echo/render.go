package echoapi

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

const baseTemplate = "_base.gohtml"

var templateFuncs = template.FuncMap{
	"score": func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"datetime": func(t time.Time) string {
		return t.UTC().Format("02/01/2006 15:04")
	},
}

// templateRenderer executes each page within the base layout.
type templateRenderer struct {
	appName   string
	templates map[string]*template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer(fsys fs.FS, appName string) (*templateRenderer, error) {
	pages, err := fs.Glob(fsys, "templates/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}

	r := &templateRenderer{appName: appName, templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		if path.Base(page) == baseTemplate {
			continue
		}
		name := strings.TrimSuffix(path.Base(page), ".gohtml")
		tmpl, err := template.New(baseTemplate).Funcs(templateFuncs).ParseFS(fsys, path.Join("templates", baseTemplate), page)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing template %s", name)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	if m, ok := data.(echo.Map); ok {
		m["appName"] = r.appName
	}
	return tmpl.ExecuteTemplate(w, baseTemplate, data)
}

// render executes the `name` page, adding what every page needs to `data`.
func render(ctx echo.Context, code int, name, title string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	flashes, err := popFlashes(ctx)
	if err != nil {
		return err
	}
	data["title"] = title
	data["flashes"] = flashes
	data["session"] = getSession(ctx)
	data["csrf"], _ = ctx.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return ctx.Render(code, name, data)
}
