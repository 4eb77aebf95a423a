package store

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const schemaName = "relief"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// buildUpdateClause creates the SET clause for ON CONFLICT DO UPDATE,
// e.g. "name = EXCLUDED.name, slug = EXCLUDED.slug". Columns are sorted so
// the generated SQL is stable.
func buildUpdateClause(fields map[string]any, skip ...string) string {
	columns := make([]string, 0, len(fields))

fieldloop:
	for field := range fields {
		for _, s := range skip {
			if field == s {
				continue fieldloop
			}
		}
		columns = append(columns, field)
	}
	sort.Strings(columns)

	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}
	return strings.Join(parts, ", ")
}

func upsertQuery(table string, row map[string]any) (string, []any, error) {
	return psql().
		Insert(table).
		SetMap(row).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(row, "id", "created_at")).
		ToSql()
}
