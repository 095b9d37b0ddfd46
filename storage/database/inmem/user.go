package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

// matriculeTaken must be called with the lock held.
func (repo *userRepository) matriculeTaken(matricule string, exclID int) bool {
	for _, usr := range repo.db.users {
		if usr.Matricule == matricule && usr.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.matriculeTaken(usr.Matricule, 0) {
		return user.User{}, user.ErrMatriculeExists
	}
	usr.ID = repo.db.nextPK()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID == 0 && filter.Matricule == "" && filter.IsAdmin == nil {
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.users {
		if filter.ID != 0 && usr.ID != filter.ID {
			continue
		}
		if filter.Matricule != "" && !strings.EqualFold(usr.Matricule, filter.Matricule) {
			continue
		}
		if filter.IsAdmin != nil && usr.IsAdmin != *filter.IsAdmin {
			continue
		}
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if filter.IsAdmin != nil && usr.IsAdmin != *filter.IsAdmin {
			continue
		}
		users = append(users, *usr)
	}
	// map iteration is random: settle on ID order first
	sortBy(users, compareUsers, []core.DBOrdering{{Field: "id", Ascending: true}})
	sortBy(users, compareUsers, ordering)
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.matriculeTaken(usr.Matricule, usr.ID) {
		return user.User{}, user.ErrMatriculeExists
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func compareUsers(a, b user.User, field string) (less, equal bool) {
	switch field {
	case "id":
		return a.ID < b.ID, a.ID == b.ID
	case "name":
		c := strings.Compare(a.Name, b.Name)
		return c < 0, c == 0
	case "matricule":
		c := strings.Compare(a.Matricule, b.Matricule)
		return c < 0, c == 0
	}
	return false, true
}
