package user

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/scolarite/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrMatriculeExists    = errors.New("a user with this matricule already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// compared against when the matricule is unknown so that both failure paths cost a bcrypt round
	dummyHash, _ = bcrypt.GenerateFromPassword([]byte("scolarite"), bcrypt.DefaultCost)
)

type Repository interface {
	CreateUser(ctx context.Context, usr User) (User, error)
	GetUser(ctx context.Context, filter GetFilter) (User, error)
	// QueryUsers applies AND operation on available QueryFilter fields.
	QueryUsers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
	UpdateUser(ctx context.Context, usr User) (User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(ctx context.Context, matricule string) error {
	_, err := svc.repo.GetUser(ctx, GetFilter{Matricule: matricule})
	switch {
	case err == nil:
		return core.NewValidationError(ErrMatriculeExists, core.FieldError{Field: "matricule", Error: ErrMatriculeExists.Error()})
	case errors.Cause(err) == ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "checking matricule uniqueness")
	}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Name:      nu.Name,
		Matricule: nu.Matricule,
		IsAdmin:   nu.IsAdmin,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate looks up the User holding `matricule` within the student or the admin pool and checks `pwd`.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, matricule, pwd string, isAdmin bool) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Matricule: core.CleanString(matricule, true /* upper */), IsAdmin: &isAdmin})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			dummy := User{PasswordHash: dummyHash}
			_ = dummy.CheckPassword(pwd)
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by matricule")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByMatricule(ctx context.Context, matricule string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Matricule: core.CleanString(matricule, true /* upper */)})
}

// QueryStudents returns every non-admin User ordered by name.
func (svc *Service) QueryStudents(ctx context.Context) ([]User, error) {
	isAdmin := false
	return svc.repo.QueryUsers(
		ctx,
		QueryFilter{IsAdmin: &isAdmin},
		core.DBOrdering{Field: "name", Ascending: true},
		core.DBOrdering{Field: "id", Ascending: true},
	)
}

func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	usr, err := svc.GetByMatricule(ctx, rp.Matricule)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// EnsureAdmin creates the administrator identified by `matricule` unless a user with that matricule already exists.
// It reports whether the administrator was created.
func (svc *Service) EnsureAdmin(ctx context.Context, matricule, name, pwd string) (User, bool, error) {
	matricule = core.CleanString(matricule, true /* upper */)
	usr, err := svc.repo.GetUser(ctx, GetFilter{Matricule: matricule})
	if err == nil {
		return usr, false, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, false, errors.Wrap(err, "finding admin")
	}

	usr = User{Name: name, Matricule: matricule, IsAdmin: true}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, false, errors.Wrap(err, "hashing password")
	}
	if usr, err = svc.repo.CreateUser(ctx, usr); err != nil {
		return User{}, false, errors.Wrap(err, "creating admin")
	}
	return usr, true, nil
}
