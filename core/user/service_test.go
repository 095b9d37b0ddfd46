package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/user"
	"github.com/trezcool/scolarite/storage/database/inmem"
	"github.com/trezcool/scolarite/tests"
)

func newService() (*user.Service, user.Repository) {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return user.NewService(repo), repo
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()
	alice := testutil.CreateUser(t, repo, "Alice", "MAT001", "alice-pwd-24", false)
	adm := testutil.CreateUser(t, repo, "Direction", "ADM01", "admin123", true)

	tests := []struct {
		name      string
		matricule string
		pwd       string
		isAdmin   bool
		want      user.User
		wantErr   error
	}{
		{name: "student", matricule: "MAT001", pwd: "alice-pwd-24", want: alice},
		{name: "student, lower-cased matricule", matricule: " mat001 ", pwd: "alice-pwd-24", want: alice},
		{name: "wrong password", matricule: "MAT001", pwd: "alice-pwd-25", wantErr: user.ErrInvalidCredentials},
		{name: "unknown matricule", matricule: "MAT404", pwd: "alice-pwd-24", wantErr: user.ErrInvalidCredentials},
		{name: "student on admin portal", matricule: "MAT001", pwd: "alice-pwd-24", isAdmin: true, wantErr: user.ErrInvalidCredentials},
		{name: "admin on student portal", matricule: "ADM01", pwd: "admin123", wantErr: user.ErrInvalidCredentials},
		{name: "admin", matricule: "ADM01", pwd: "admin123", isAdmin: true, want: adm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.matricule, tt.pwd, tt.isAdmin)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				assert.Zero(t, got.ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	adm, created, err := svc.EnsureAdmin(ctx, "adm01", "Direction", "admin123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, adm.IsAdmin)
	assert.Equal(t, "ADM01", adm.Matricule)

	again, created, err := svc.EnsureAdmin(ctx, "ADM01", "Autre", "other-pwd")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, adm, again)

	isAdmin := true
	admins, err := repo.QueryUsers(ctx, user.QueryFilter{IsAdmin: &isAdmin})
	require.NoError(t, err)
	assert.Len(t, admins, 1)
	assert.NoError(t, admins[0].CheckPassword("admin123"))
}

func TestService_QueryStudents(t *testing.T) {
	svc, repo := newService()
	zoe := testutil.CreateUser(t, repo, "Zoé", "MAT003", "", false)
	testutil.CreateUser(t, repo, "Direction", "ADM01", "", true)
	ali := testutil.CreateUser(t, repo, "Ali", "MAT002", "", false)
	ali2 := testutil.CreateUser(t, repo, "Ali", "MAT001", "", false)

	got, err := svc.QueryStudents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []user.User{ali, ali2, zoe}, got)
}

func TestNewUser_Validate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()
	testutil.CreateUser(t, repo, "Alice", "MAT001", "", false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	valid := func() user.NewUser {
		return user.NewUser{Name: "Bob Ilunga", Matricule: "mat-002", Password: "k7-lemon-tree", PasswordConfirm: "k7-lemon-tree"}
	}

	tests := []struct {
		name     string
		modify   func(nu *user.NewUser)
		wantFlds []core.FieldError
	}{
		{name: "valid", modify: func(nu *user.NewUser) {}},
		{
			name:     "missing name",
			modify:   func(nu *user.NewUser) { nu.Name = "   " },
			wantFlds: []core.FieldError{{Field: "name", Error: "this field is required"}},
		},
		{
			name:     "bad matricule",
			modify:   func(nu *user.NewUser) { nu.Matricule = "MAT/002" },
			wantFlds: []core.FieldError{{Field: "matricule", Error: "only letters, digits and dashes are allowed"}},
		},
		{
			name:     "taken matricule",
			modify:   func(nu *user.NewUser) { nu.Matricule = "mat001" },
			wantFlds: []core.FieldError{{Field: "matricule", Error: "a user with this matricule already exists"}},
		},
		{
			name:     "short password",
			modify:   func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "k7-lem", "k7-lem" },
			wantFlds: []core.FieldError{{Field: "password", Error: "password must contain at least 8 characters"}},
		},
		{
			name:     "whitespace",
			modify:   func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "k7 lemon tree", "k7 lemon tree" },
			wantFlds: []core.FieldError{{Field: "password", Error: "password must not contain whitespace"}},
		},
		{
			name:     "numeric",
			modify:   func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "2024202420", "2024202420" },
			wantFlds: []core.FieldError{{Field: "password", Error: "password cannot be entirely numeric"}},
		},
		{
			name:     "like the name",
			modify:   func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "ilungabob", "ilungabob" },
			wantFlds: []core.FieldError{{Field: "password", Error: "password cannot be similar to user attributes"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.modify(&nu)
			err := nu.Validate(ctx, validate, svc)
			if tt.wantFlds == nil {
				assert.NoError(t, err)
				assert.Equal(t, "MAT-002", nu.Matricule)
				return
			}
			assert.Equal(t, tt.wantFlds, core.TranslateErrors(err, translator))
		})
	}
}
