package fsm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"varirunBack/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStaleStatus       = errors.New("status changed by another request")
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Column is an extra column written together with the status.
type Column struct {
	Name  string
	Value any
}

// Machine is a status graph bound to one table.
type Machine struct {
	table       string
	transitions map[string]map[string]struct{}
}

// Payment: pending is the only state with outgoing edges.
var Payment = Machine{
	table: "manual_payments",
	transitions: map[string]map[string]struct{}{
		models.PaymentStatusPending: {
			models.PaymentStatusApproved: {},
			models.PaymentStatusRejected: {},
		},
		models.PaymentStatusApproved: {},
		models.PaymentStatusRejected: {},
	},
}

// RunResult allows every move between known statuses, including a rewrite
// of the same status.
var RunResult = Machine{
	table: "run_results",
	transitions: map[string]map[string]struct{}{
		models.RunStatusPending: {models.RunStatusPending: {}, models.RunStatusApprove: {}, models.RunStatusReject: {}},
		models.RunStatusApprove: {models.RunStatusPending: {}, models.RunStatusApprove: {}, models.RunStatusReject: {}},
		models.RunStatusReject:  {models.RunStatusPending: {}, models.RunStatusApprove: {}, models.RunStatusReject: {}},
	},
}

// CanTransition returns whether a row may move from one status to another.
func (m Machine) CanTransition(from, to string) bool {
	allowed, ok := m.transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Terminal reports whether no transition leaves the status.
func (m Machine) Terminal(status string) bool {
	allowed, ok := m.transitions[status]
	return ok && len(allowed) == 0
}

// Apply writes the new status only if the row still has fromStatus.
func (m Machine) Apply(ctx context.Context, db Execer, id int64, fromStatus, toStatus string, extra ...Column) error {
	if !m.CanTransition(fromStatus, toStatus) {
		return ErrInvalidTransition
	}

	sets := []string{"status = ?"}
	args := []any{toStatus}
	for _, c := range extra {
		sets = append(sets, c.Name+" = ?")
		args = append(args, c.Value)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id, fromStatus)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND status = ?`, m.table, strings.Join(sets, ", "))
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStaleStatus
	}
	return nil
}
