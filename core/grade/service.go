package grade

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scolarite/core"
)

var (
	// errors
	ErrSubjectNotFound = errors.New("subject not found")
	ErrUserNotFound    = errors.New("student not found")

	NowFunc = time.Now // mockable
)

type Repository interface {
	CreateSubject(ctx context.Context, sub Subject) (Subject, error)
	GetSubject(ctx context.Context, id int) (Subject, error)
	QuerySubjects(ctx context.Context) ([]Subject, error)
	// CreateGrade inserts `grd` for grd.Student.ID and grd.Subject.ID and returns it joined with both.
	CreateGrade(ctx context.Context, grd Grade) (Grade, error)
	// QueryGrades applies AND operation on available QueryFilter fields.
	QueryGrades(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Grade, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// StudentReport loads every Grade owned by `userID` and their weighted Average.
func (svc *Service) StudentReport(ctx context.Context, userID int) (Report, error) {
	grades, err := svc.repo.QueryGrades(ctx, QueryFilter{UserID: userID}, core.DBOrdering{Field: "id", Ascending: true})
	if err != nil {
		return Report{}, errors.Wrap(err, "querying student grades")
	}
	return Report{Grades: grades, Average: Average(grades)}, nil
}

// FlaggedGrades returns the grades carrying an error note, most recent first.
func (svc *Service) FlaggedGrades(ctx context.Context) ([]Grade, error) {
	grades, err := svc.repo.QueryGrades(
		ctx,
		QueryFilter{Flagged: true},
		core.DBOrdering{Field: "created_at", Ascending: false},
		core.DBOrdering{Field: "id", Ascending: false},
	)
	return grades, errors.Wrap(err, "querying flagged grades")
}

func (svc *Service) Subjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	ns.Name = core.CleanString(ns.Name)
	ns.Professor = core.CleanString(ns.Professor)
	if err := svc.validate.Struct(ns); err != nil {
		return Subject{}, err
	}
	return svc.repo.CreateSubject(ctx, Subject{
		Name:        ns.Name,
		Professor:   ns.Professor,
		Coefficient: ns.Coefficient,
	})
}

func (svc *Service) CreateGrade(ctx context.Context, ng NewGrade) (Grade, error) {
	ng.Session = core.CleanString(ng.Session)
	ng.ErrorNote = strings.TrimSpace(ng.ErrorNote)
	if err := svc.validate.Struct(ng); err != nil {
		return Grade{}, err
	}
	if _, err := svc.repo.GetSubject(ctx, ng.SubjectID); err != nil {
		return Grade{}, err
	}
	return svc.repo.CreateGrade(ctx, Grade{
		Score:     ng.Score,
		Session:   ng.Session,
		ErrorNote: null.NewString(ng.ErrorNote, ng.ErrorNote != ""),
		CreatedAt: NowFunc().UTC(),
		Student:   Student{ID: ng.UserID},
		Subject:   Subject{ID: ng.SubjectID},
	})
}
