package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/tests"
)

func ids(grades []grade.Grade) []int {
	res := make([]int, 0, len(grades))
	for _, g := range grades {
		res = append(res, g.ID)
	}
	return res
}

func Test_gradeRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	usrRepo := NewUserRepository(db)
	repo := NewGradeRepository(db)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "MAT001", "secret-pwd", false)
	bob := testutil.CreateUser(t, usrRepo, "Bob", "MAT002", "secret-pwd", false)
	maths := testutil.CreateSubject(t, repo, "Maths", "M. Ilunga", 3)
	french := testutil.CreateSubject(t, repo, "Français", "Mme Tshala", 1)

	t1 := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	g1 := testutil.CreateGrade(t, repo, alice, maths, 14, "", t1)
	g2 := testutil.CreateGrade(t, repo, alice, french, 11, "wrong session", t1)
	g3 := testutil.CreateGrade(t, repo, bob, maths, 9, "typo", t2)

	t.Run("created grade is joined", func(t *testing.T) {
		assert.Equal(t, grade.Student{ID: alice.ID, Name: "Alice", Matricule: "MAT001"}, g2.Student)
		assert.Equal(t, french, g2.Subject)
		assert.Equal(t, null.StringFrom("wrong session"), g2.ErrorNote)
		assert.True(t, g2.CreatedAt.Equal(t1))
		assert.False(t, g1.IsFlagged())
	})

	t.Run("subjects by name", func(t *testing.T) {
		got, err := repo.QuerySubjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, []grade.Subject{french, maths}, got)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := repo.GetSubject(ctx, 999)
		assert.Equal(t, grade.ErrSubjectNotFound, errors.Cause(err))
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := repo.CreateGrade(ctx, grade.Grade{Score: 10, CreatedAt: t1, Student: grade.Student{ID: 999}, Subject: maths})
		assert.Equal(t, grade.ErrUserNotFound, errors.Cause(err))
	})

	tests := []struct {
		name     string
		filter   grade.QueryFilter
		ordering []core.DBOrdering
		want     []int
	}{
		{name: "all", ordering: []core.DBOrdering{{Field: "id", Ascending: true}}, want: ids([]grade.Grade{g1, g2, g3})},
		{name: "by student", filter: grade.QueryFilter{UserID: alice.ID}, ordering: []core.DBOrdering{{Field: "id", Ascending: true}}, want: ids([]grade.Grade{g1, g2})},
		{
			name:     "flagged, most recent first",
			filter:   grade.QueryFilter{Flagged: true},
			ordering: []core.DBOrdering{{Field: "created_at"}, {Field: "id"}},
			want:     ids([]grade.Grade{g3, g2}),
		},
		{name: "by score", ordering: []core.DBOrdering{{Field: "score", Ascending: true}}, want: ids([]grade.Grade{g3, g2, g1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryGrades(ctx, tt.filter, tt.ordering...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}
