package sqlxrepos

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/scolarite/core"
)

// orderBy builds an ORDER BY clause, mapping ordering fields onto the allowed `columns`.
func orderBy(columns map[string]string, ordering []core.DBOrdering) (string, error) {
	if len(ordering) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := columns[ord.Field]
		if !ok {
			return "", errors.Errorf("unknown ordering field %q", ord.Field)
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", "), nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
