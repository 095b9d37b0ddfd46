package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/storage/database"
)

const (
	subjectColumns = "id, name, professor, coefficient"

	gradeSelect = `
		SELECT g.id, g.score, g.session, g.error_note, g.created_at,
		       u.id AS user_id, u.name AS user_name, u.matricule AS user_matricule,
		       s.id AS subject_id, s.name AS subject_name, s.professor AS subject_professor, s.coefficient AS subject_coefficient
		FROM grades g
		JOIN users u ON u.id = g.user_id
		JOIN subjects s ON s.id = g.subject_id`
)

var gradeOrderings = map[string]string{
	"id":         "g.id",
	"score":      "g.score",
	"created_at": "g.created_at",
}

type subjectRow struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	Professor   string `db:"professor"`
	Coefficient int    `db:"coefficient"`
}

func (row subjectRow) subject() grade.Subject {
	return grade.Subject{
		ID:          row.ID,
		Name:        row.Name,
		Professor:   row.Professor,
		Coefficient: row.Coefficient,
	}
}

type gradeRow struct {
	ID                 int         `db:"id"`
	Score              float64     `db:"score"`
	Session            string      `db:"session"`
	ErrorNote          null.String `db:"error_note"`
	CreatedAt          time.Time   `db:"created_at"`
	UserID             int         `db:"user_id"`
	UserName           string      `db:"user_name"`
	UserMatricule      string      `db:"user_matricule"`
	SubjectID          int         `db:"subject_id"`
	SubjectName        string      `db:"subject_name"`
	SubjectProfessor   string      `db:"subject_professor"`
	SubjectCoefficient int         `db:"subject_coefficient"`
}

func (row gradeRow) grade() grade.Grade {
	return grade.Grade{
		ID:        row.ID,
		Score:     row.Score,
		Session:   row.Session,
		ErrorNote: row.ErrorNote,
		CreatedAt: row.CreatedAt.UTC(),
		Student: grade.Student{
			ID:        row.UserID,
			Name:      row.UserName,
			Matricule: row.UserMatricule,
		},
		Subject: grade.Subject{
			ID:          row.SubjectID,
			Name:        row.SubjectName,
			Professor:   row.SubjectProfessor,
			Coefficient: row.SubjectCoefficient,
		},
	}
}

type gradeRepository struct {
	db sqlx.ExtContext
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db sqlx.ExtContext) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) CreateSubject(ctx context.Context, sub grade.Subject) (grade.Subject, error) {
	q := repo.db.Rebind(`INSERT INTO subjects (name, professor, coefficient) VALUES (?, ?, ?) RETURNING id`)
	if err := sqlx.GetContext(ctx, repo.db, &sub.ID, q, sub.Name, sub.Professor, sub.Coefficient); err != nil {
		return grade.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo gradeRepository) GetSubject(ctx context.Context, id int) (grade.Subject, error) {
	var row subjectRow
	q := repo.db.Rebind("SELECT " + subjectColumns + " FROM subjects WHERE id = ?")
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return grade.Subject{}, grade.ErrSubjectNotFound
		}
		return grade.Subject{}, errors.Wrap(err, "getting subject")
	}
	return row.subject(), nil
}

func (repo gradeRepository) QuerySubjects(ctx context.Context) ([]grade.Subject, error) {
	var rows []subjectRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, "SELECT "+subjectColumns+" FROM subjects ORDER BY name ASC, id ASC"); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]grade.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.subject())
	}
	return subjects, nil
}

func (repo gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	var id int
	q := repo.db.Rebind(`
		INSERT INTO grades (score, session, error_note, created_at, user_id, subject_id)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := sqlx.GetContext(ctx, repo.db, &id, q,
		grd.Score, grd.Session, grd.ErrorNote, grd.CreatedAt.UTC(), grd.Student.ID, grd.Subject.ID)
	if err != nil {
		// subjects are checked beforehand by the service
		if database.IsForeignKeyViolation(err) {
			return grade.Grade{}, grade.ErrUserNotFound
		}
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}

	grades, err := repo.selectGrades(ctx, []string{"g.id = ?"}, []interface{}{id}, "")
	if err != nil {
		return grade.Grade{}, err
	}
	if len(grades) == 0 {
		return grade.Grade{}, errors.Errorf("grade %d not found after insert", id)
	}
	return grades[0], nil
}

func (repo gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter, ordering ...core.DBOrdering) ([]grade.Grade, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.UserID != 0 {
		conds = append(conds, "g.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Flagged {
		conds = append(conds, "g.error_note IS NOT NULL")
	}
	order, err := orderBy(gradeOrderings, ordering)
	if err != nil {
		return nil, err
	}
	return repo.selectGrades(ctx, conds, args, order)
}

func (repo gradeRepository) selectGrades(ctx context.Context, conds []string, args []interface{}, order string) ([]grade.Grade, error) {
	var rows []gradeRow
	q := repo.db.Rebind(gradeSelect + whereClause(conds) + order)
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.grade())
	}
	return grades, nil
}
