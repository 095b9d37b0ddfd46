package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateSubject(_ context.Context, sub grade.Subject) (grade.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = repo.db.nextPK()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *gradeRepository) GetSubject(_ context.Context, id int) (grade.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return grade.Subject{}, grade.ErrSubjectNotFound
}

func (repo *gradeRepository) QuerySubjects(_ context.Context) ([]grade.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]grade.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subjects = append(subjects, *sub)
	}
	sortBy(subjects, func(a, b grade.Subject, field string) (bool, bool) {
		if field == "name" {
			c := strings.Compare(a.Name, b.Name)
			return c < 0, c == 0
		}
		return a.ID < b.ID, a.ID == b.ID
	}, []core.DBOrdering{{Field: "name", Ascending: true}, {Field: "id", Ascending: true}})
	return subjects, nil
}

func (repo *gradeRepository) CreateGrade(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[grd.Student.ID]; !ok {
		return grade.Grade{}, grade.ErrUserNotFound
	}
	if _, ok := repo.db.subjects[grd.Subject.ID]; !ok {
		return grade.Grade{}, grade.ErrSubjectNotFound
	}
	grd.ID = repo.db.nextPK()
	grd.CreatedAt = grd.CreatedAt.UTC()
	rec := &gradeRecord{Grade: grd, userID: grd.Student.ID, subjectID: grd.Subject.ID}
	repo.db.grades[grd.ID] = rec
	return repo.join(rec), nil
}

// join resolves the owner and subject of `rec`; must be called with the lock held.
func (repo *gradeRepository) join(rec *gradeRecord) grade.Grade {
	grd := rec.Grade
	if usr, ok := repo.db.users[rec.userID]; ok {
		grd.Student = grade.Student{ID: usr.ID, Name: usr.Name, Matricule: usr.Matricule}
	}
	if sub, ok := repo.db.subjects[rec.subjectID]; ok {
		grd.Subject = *sub
	}
	return grd
}

func (repo *gradeRepository) QueryGrades(_ context.Context, filter grade.QueryFilter, ordering ...core.DBOrdering) ([]grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := make([]grade.Grade, 0)
	for _, rec := range repo.db.grades {
		if filter.UserID != 0 && rec.userID != filter.UserID {
			continue
		}
		if filter.Flagged && !rec.ErrorNote.Valid {
			continue
		}
		grades = append(grades, repo.join(rec))
	}
	sortBy(grades, compareGrades, []core.DBOrdering{{Field: "id", Ascending: true}})
	sortBy(grades, compareGrades, ordering)
	return grades, nil
}

func compareGrades(a, b grade.Grade, field string) (less, equal bool) {
	switch field {
	case "id":
		return a.ID < b.ID, a.ID == b.ID
	case "score":
		return a.Score < b.Score, a.Score == b.Score
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
	return false, true
}
