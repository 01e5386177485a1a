package fsm

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"varirunBack/internal/models"
)

func TestPaymentTransitions(t *testing.T) {
	if !Payment.CanTransition(models.PaymentStatusPending, models.PaymentStatusApproved) {
		t.Fatal("expected pending -> approved to be allowed")
	}
	if !Payment.CanTransition(models.PaymentStatusPending, models.PaymentStatusRejected) {
		t.Fatal("expected pending -> rejected to be allowed")
	}
	if Payment.CanTransition(models.PaymentStatusApproved, models.PaymentStatusRejected) {
		t.Fatal("approved must be terminal")
	}
	if Payment.CanTransition(models.PaymentStatusRejected, models.PaymentStatusApproved) {
		t.Fatal("rejected must be terminal")
	}
	if Payment.CanTransition(models.PaymentStatusPending, models.PaymentStatusPending) {
		t.Fatal("pending -> pending is not a transition")
	}
	if !Payment.Terminal(models.PaymentStatusApproved) || Payment.Terminal(models.PaymentStatusPending) {
		t.Fatal("unexpected terminal states")
	}
}

func TestRunResultTransitions(t *testing.T) {
	for _, from := range []string{models.RunStatusPending, models.RunStatusApprove, models.RunStatusReject} {
		for _, to := range []string{models.RunStatusPending, models.RunStatusApprove, models.RunStatusReject} {
			if !RunResult.CanTransition(from, to) {
				t.Fatalf("expected %s -> %s to be allowed", from, to)
			}
		}
	}
	if RunResult.CanTransition(models.RunStatusPending, "done") {
		t.Fatal("unknown status accepted")
	}
}

type execResult int64

func (r execResult) LastInsertId() (int64, error) { return 0, nil }
func (r execResult) RowsAffected() (int64, error) { return int64(r), nil }

type recordingExecer struct {
	query string
	args  []any
	rows  int64
}

func (e *recordingExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	e.query = query
	e.args = args
	return execResult(e.rows), nil
}

func TestApplyBuildsConditionalUpdate(t *testing.T) {
	ex := &recordingExecer{rows: 1}
	err := Payment.Apply(context.Background(), ex, 9, models.PaymentStatusPending, models.PaymentStatusRejected,
		Column{Name: "approved_by", Value: int64(1)},
		Column{Name: "notes", Value: "blurry slip"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(ex.query, "UPDATE manual_payments SET status = ?, approved_by = ?, notes = ?") {
		t.Fatalf("unexpected query: %s", ex.query)
	}
	if !strings.HasSuffix(ex.query, "WHERE id = ? AND status = ?") {
		t.Fatalf("missing status guard: %s", ex.query)
	}
	if len(ex.args) != 5 || ex.args[3] != int64(9) || ex.args[4] != models.PaymentStatusPending {
		t.Fatalf("unexpected args: %v", ex.args)
	}
}

func TestApplyStaleStatus(t *testing.T) {
	ex := &recordingExecer{rows: 0}
	err := Payment.Apply(context.Background(), ex, 9, models.PaymentStatusPending, models.PaymentStatusApproved)
	if !errors.Is(err, ErrStaleStatus) {
		t.Fatalf("expected ErrStaleStatus, got %v", err)
	}
}

func TestApplyRejectsIllegalTransition(t *testing.T) {
	ex := &recordingExecer{rows: 1}
	err := Payment.Apply(context.Background(), ex, 9, models.PaymentStatusApproved, models.PaymentStatusRejected)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if ex.query != "" {
		t.Fatal("no statement should be issued for an illegal transition")
	}
}
