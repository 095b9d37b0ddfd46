package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/scolarite/core"
)

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Matricule    string `json:"matricule"`
	IsAdmin      bool   `json:"is_admin"`
	PasswordHash []byte `json:"-"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,max=100"`
	Matricule       string `json:"matricule" validate:"required,max=20,matricule"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	IsAdmin         bool   `json:"is_admin"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Matricule = core.CleanString(nu.Matricule, true /* upper */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Matricule)
}

type ResetUserPassword struct {
	Matricule       string `json:"matricule" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	rp.Matricule = core.CleanString(rp.Matricule, true /* upper */)
	return validate.Struct(rp)
}

// GetFilter selects a single User; zero fields are ignored.
type GetFilter struct {
	ID        int
	Matricule string
	IsAdmin   *bool
}

type QueryFilter struct {
	IsAdmin *bool
}
