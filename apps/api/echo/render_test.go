package echoapi

import (
	"bytes"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scolarite/core/user"
	"github.com/trezcool/scolarite/fs"
)

func Test_newTemplateRenderer(t *testing.T) {
	r, err := newTemplateRenderer(appfs.FS, "Scolarité")
	require.NoError(t, err)

	pages := []string{"index", "login", "admin_login", "dashboard", "admin_dashboard", "error"}
	assert.Len(t, r.templates, len(pages))
	for _, page := range pages {
		assert.Contains(t, r.templates, page)
	}

	tests := []struct {
		page string
		data echo.Map
		want []string
	}{
		{page: "index", data: echo.Map{"title": "Accueil"}, want: []string{"<title>Accueil | Scolarité</title>"}},
		{page: "login", data: echo.Map{"csrf": "tok", "error": "Identifiants incorrects."}, want: []string{
			`name="_csrf" value="tok"`, "Identifiants incorrects.",
		}},
		{page: "dashboard", data: echo.Map{"user": user.User{Name: "Alice", Matricule: "MAT001"}, "grades": nil, "average": 0.0}, want: []string{"Alice", "MAT001", "Aucune note", "<strong>0.00</strong>"}},
		{page: "error", data: echo.Map{"code": 404, "message": "Not Found"}, want: []string{"404", "Not Found"}},
	}
	for _, tc := range tests {
		t.Run(tc.page, func(t *testing.T) {
			tc.data["session"] = Session{}
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, tc.page, tc.data, nil))
			for _, s := range tc.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}

	assert.Error(t, r.Render(new(bytes.Buffer), "missing", echo.Map{}, nil))
}
