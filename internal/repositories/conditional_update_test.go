package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"varirunBack/internal/models"
)

type execResult int64

func (r execResult) LastInsertId() (int64, error) { return 0, nil }
func (r execResult) RowsAffected() (int64, error) { return int64(r), nil }

// recordingQuerier stands in for the transaction and keeps the last statement.
type recordingQuerier struct {
	query string
	args  []any
	rows  int64
	execs int
}

func (q *recordingQuerier) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	q.execs++
	q.query = strings.Join(strings.Fields(query), " ")
	q.args = args
	return execResult(q.rows), nil
}

func (q *recordingQuerier) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("query not recorded")
}

func (q *recordingQuerier) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func recorded(rows int64) (context.Context, *recordingQuerier) {
	q := &recordingQuerier{rows: rows}
	return withQuerier(context.Background(), q), q
}

func TestUpdatePendingGuardsOnPending(t *testing.T) {
	repo := &ManualPaymentRepository{}
	ctx, q := recorded(1)
	size := "L"

	err := repo.UpdatePending(ctx, models.ManualPayment{
		ID: 9, PackageID: 3, Amount: 290000, Address: "Vientiane", Size: &size,
		PaymentSlipURL: "https://cdn/slip.jpg", PaymentSlipRef: "slips/slip.jpg",
	})
	require.NoError(t, err)
	require.Equal(t, "UPDATE manual_payments SET package_id = ?, amount = ?, address = ?, size = ?, payment_slip = ?, payment_slip_ref = ?, updated_at = NOW() WHERE id = ? AND status = ?", q.query)
	require.Equal(t, []any{int64(3), int64(290000), "Vientiane", &size, "https://cdn/slip.jpg", "slips/slip.jpg", int64(9), models.PaymentStatusPending}, q.args)

	ctx, _ = recorded(0)
	require.ErrorIs(t, repo.UpdatePending(ctx, models.ManualPayment{ID: 9}), models.ErrStatusChanged)
}

func TestUpdateSlipGuardsOnPending(t *testing.T) {
	repo := &ManualPaymentRepository{}
	ctx, q := recorded(1)

	require.NoError(t, repo.UpdateSlip(ctx, 9, "https://cdn/new.jpg", "slips/new.jpg"))
	require.Equal(t, "UPDATE manual_payments SET payment_slip = ?, payment_slip_ref = ?, updated_at = NOW() WHERE id = ? AND status = ?", q.query)
	require.Equal(t, []any{"https://cdn/new.jpg", "slips/new.jpg", int64(9), models.PaymentStatusPending}, q.args)

	ctx, _ = recorded(0)
	require.ErrorIs(t, repo.UpdateSlip(ctx, 9, "u", "r"), models.ErrStatusChanged)
}

func TestTransitionStatusIsConditional(t *testing.T) {
	repo := &ManualPaymentRepository{}
	ctx, q := recorded(1)

	require.NoError(t, repo.TransitionStatus(ctx, 9, models.PaymentStatusPending, models.PaymentStatusApproved, 1, "Payment approved"))
	require.Equal(t, "UPDATE manual_payments SET status = ?, approved_by = ?, notes = ?, updated_at = NOW() WHERE id = ? AND status = ?", q.query)
	require.Equal(t, []any{models.PaymentStatusApproved, int64(1), "Payment approved", int64(9), models.PaymentStatusPending}, q.args)

	ctx, _ = recorded(0)
	require.ErrorIs(t, repo.TransitionStatus(ctx, 9, models.PaymentStatusPending, models.PaymentStatusRejected, 1, "late"), models.ErrStatusChanged)

	ctx, q = recorded(1)
	err := repo.TransitionStatus(ctx, 9, models.PaymentStatusApproved, models.PaymentStatusRejected, 1, "undo")
	require.ErrorIs(t, err, models.ErrStatusChanged)
	require.Zero(t, q.execs, "terminal status must not reach the database")
}

func TestRunResultUpdateStatusIsConditional(t *testing.T) {
	repo := &RunResultRepository{}
	ctx, q := recorded(1)
	reason := "watch photo unreadable"

	err := repo.UpdateStatus(ctx, 4, models.RunStatusApprove, models.UpdateRunStatusInput{
		ResultID: 4, Status: models.RunStatusReject, RejectDescription: &reason, ApprovedBy: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "UPDATE run_results SET status = ?, approved_by = ?, reject_description = ?, updated_at = NOW() WHERE id = ? AND status = ?", q.query)
	require.Equal(t, []any{models.RunStatusReject, int64(2), reason, int64(4), models.RunStatusApprove}, q.args)

	ctx, q = recorded(1)
	require.NoError(t, repo.UpdateStatus(ctx, 4, models.RunStatusPending, models.UpdateRunStatusInput{Status: models.RunStatusApprove, ApprovedBy: 2}))
	require.NotContains(t, q.query, "reject_description")

	ctx, _ = recorded(0)
	err = repo.UpdateStatus(ctx, 4, models.RunStatusPending, models.UpdateRunStatusInput{Status: models.RunStatusApprove, ApprovedBy: 2})
	require.ErrorIs(t, err, models.ErrStatusChanged)
}

func TestRankingIncrementUpserts(t *testing.T) {
	repo := &RankingRepository{}
	ctx, q := recorded(2)

	require.NoError(t, repo.Increment(ctx, 7, -10.5, -3600))
	require.True(t, strings.HasPrefix(q.query, "INSERT INTO rankings (user_id, total_range, total_time, created_at) VALUES (?, ?, ?, NOW())"), q.query)
	require.Contains(t, q.query, "ON DUPLICATE KEY UPDATE total_range = total_range + VALUES(total_range), total_time = total_time + VALUES(total_time)")
	require.Equal(t, []any{int64(7), -10.5, int64(-3600)}, q.args)
}

func TestSetPackageMissingUser(t *testing.T) {
	repo := &UserRepository{}
	ctx, q := recorded(0)

	require.ErrorIs(t, repo.SetPackage(ctx, 404, 3), models.ErrNoRecord)
	require.Equal(t, "UPDATE users SET package_id = ?, updated_at = NOW() WHERE id = ?", q.query)
	require.Equal(t, []any{int64(3), int64(404)}, q.args)
}

func TestLockClauseInsideTx(t *testing.T) {
	ctx, _ := recorded(0)
	require.Equal(t, " FOR UPDATE", lockClause(ctx))
}
