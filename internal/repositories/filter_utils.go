package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"varirunBack/internal/models"
)

// whereBuilder collects AND-ed conditions with their arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func limitClause(p models.Pagination) (string, []any) {
	if !p.Enabled() {
		return "", nil
	}
	return " LIMIT ? OFFSET ?", []any{p.PerPage, p.Offset()}
}

func likePattern(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

func countRows(ctx context.Context, q querier, from string, w *whereBuilder) (int64, error) {
	var total int64
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", from, w.sql()), w.args...).Scan(&total)
	return total, err
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
