package inmemdb

import (
	"sort"
	"sync"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/core/user"
)

type (
	// DB keeps every table behind a single lock so that grades can check their foreign keys.
	DB struct {
		mutex    sync.RWMutex
		users    map[int]*user.User
		subjects map[int]*grade.Subject
		grades   map[int]*gradeRecord
		pkCount  int
	}

	gradeRecord struct {
		grade.Grade
		userID    int
		subjectID int
	}
)

func Open() *DB {
	return &DB{
		users:    make(map[int]*user.User),
		subjects: make(map[int]*grade.Subject),
		grades:   make(map[int]*gradeRecord),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

// sortBy sorts `items` following `ordering`, using `less` to compare a single field; ties keep their order.
func sortBy[T any](items []T, less func(a, b T, field string) (bool, bool), ordering []core.DBOrdering) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range ordering {
			lt, eq := less(items[i], items[j], ord.Field)
			if eq {
				continue
			}
			return lt == ord.Ascending
		}
		return false
	})
}
