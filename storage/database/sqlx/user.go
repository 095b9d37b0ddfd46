package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/user"
	"github.com/trezcool/scolarite/storage/database"
)

const userColumns = "id, name, matricule, password_hash, is_admin"

var userOrderings = map[string]string{
	"id":        "id",
	"name":      "name",
	"matricule": "matricule",
}

type userRow struct {
	ID           int    `db:"id"`
	Name         string `db:"name"`
	Matricule    string `db:"matricule"`
	PasswordHash string `db:"password_hash"`
	IsAdmin      bool   `db:"is_admin"`
}

func (row userRow) user() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Matricule:    row.Matricule,
		IsAdmin:      row.IsAdmin,
		PasswordHash: []byte(row.PasswordHash),
	}
}

type userRepository struct {
	db sqlx.ExtContext
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db sqlx.ExtContext) *userRepository {
	return &userRepository{db: db}
}

// trapErr maps driver errors to user errors
func (repo userRepository) trapErr(err error, msg string) error {
	switch {
	case err == sql.ErrNoRows:
		return user.ErrNotFound
	case database.IsUniqueViolation(err):
		return user.ErrMatriculeExists
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`INSERT INTO users (name, matricule, password_hash, is_admin) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := sqlx.GetContext(ctx, repo.db, &usr.ID, q, usr.Name, usr.Matricule, string(usr.PasswordHash), usr.IsAdmin); err != nil {
		return user.User{}, repo.trapErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ID != 0 {
		conds = append(conds, "id = ?")
		args = append(args, filter.ID)
	}
	if filter.Matricule != "" {
		conds = append(conds, "UPPER(matricule) = UPPER(?)")
		args = append(args, filter.Matricule)
	}
	if filter.IsAdmin != nil {
		conds = append(conds, "is_admin = ?")
		args = append(args, *filter.IsAdmin)
	}
	if len(conds) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	q := repo.db.Rebind("SELECT " + userColumns + " FROM users" + whereClause(conds) + " LIMIT 1")
	if err := sqlx.GetContext(ctx, repo.db, &row, q, args...); err != nil {
		return user.User{}, repo.trapErr(err, "getting user")
	}
	return row.user(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.IsAdmin != nil {
		conds = append(conds, "is_admin = ?")
		args = append(args, *filter.IsAdmin)
	}
	order, err := orderBy(userOrderings, ordering)
	if err != nil {
		return nil, err
	}

	var rows []userRow
	q := repo.db.Rebind("SELECT " + userColumns + " FROM users" + whereClause(conds) + order)
	if err = sqlx.SelectContext(ctx, repo.db, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`UPDATE users SET name = ?, matricule = ?, password_hash = ?, is_admin = ? WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q, usr.Name, usr.Matricule, string(usr.PasswordHash), usr.IsAdmin, usr.ID)
	if err != nil {
		return user.User{}, repo.trapErr(err, "updating user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
