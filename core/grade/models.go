package grade

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type Subject struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Professor   string `json:"professor"`
	Coefficient int    `json:"coefficient"`
}

// Student is the owner of a Grade as seen from the grade book.
type Student struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Matricule string `json:"matricule"`
}

type Grade struct {
	ID        int         `json:"id"`
	Score     float64     `json:"score"`
	Session   string      `json:"session"`
	ErrorNote null.String `json:"error_note"` // set when the entry was reported as wrong
	CreatedAt time.Time   `json:"created_at"` // UTC
	Student   Student     `json:"student"`
	Subject   Subject     `json:"subject"`
}

// IsFlagged reports whether the Grade awaits an administrator review.
func (g Grade) IsFlagged() bool {
	return g.ErrorNote.Valid
}

// Report is a student's grade book.
type Report struct {
	Grades  []Grade `json:"grades"`
	Average float64 `json:"average"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"name" validate:"required,max=100"`
	Professor   string `json:"professor" validate:"max=100"`
	Coefficient int    `json:"coefficient" validate:"gte=0"`
}

// NewGrade contains information needed to record a new Grade.
type NewGrade struct {
	UserID    int     `json:"user_id" validate:"required"`
	SubjectID int     `json:"subject_id" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0"`
	Session   string  `json:"session" validate:"max=50"`
	ErrorNote string  `json:"error_note"`
}

type QueryFilter struct {
	UserID  int
	Flagged bool // only grades carrying an error note
}
