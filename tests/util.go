package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/core/user"
	"github.com/trezcool/scolarite/storage/database"
)

// PrepareDB opens a migrated in-memory SQLite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := &core.Config{}
	conf.Database.Engine = database.EngineSQLite
	conf.Database.Path = ":memory:"

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	database.SetMigrationLogger(log.New(io.Discard, "", 0))
	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, name, matricule, pwd string, isAdmin bool) user.User {
	t.Helper()

	usr := user.User{
		Name:      name,
		Matricule: matricule,
		IsAdmin:   isAdmin,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateSubject(t *testing.T, repo grade.Repository, name, professor string, coef int) grade.Subject {
	t.Helper()

	sub, err := repo.CreateSubject(context.Background(), grade.Subject{Name: name, Professor: professor, Coefficient: coef})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}
	return sub
}

// CreateGrade records a grade; an empty `note` leaves it unflagged.
func CreateGrade(
	t *testing.T,
	repo grade.Repository,
	usr user.User,
	sub grade.Subject,
	score float64,
	note string,
	createdAt ...time.Time,
) grade.Grade {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	grd, err := repo.CreateGrade(context.Background(), grade.Grade{
		Score:     score,
		Session:   "S1",
		ErrorNote: null.NewString(note, note != ""),
		CreatedAt: tstamp,
		Student:   grade.Student{ID: usr.ID},
		Subject:   sub,
	})
	if err != nil {
		t.Fatalf("CreateGrade(): %v", err)
	}
	return grd
}
