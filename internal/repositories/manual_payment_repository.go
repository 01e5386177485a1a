package repositories

import (
	"context"
	"database/sql"
	"errors"

	"varirunBack/internal/fsm"
	"varirunBack/internal/models"
)

type ManualPaymentRepository struct {
	DB *sql.DB
}

const manualPaymentColumns = `mp.id, mp.user_id, mp.package_id, mp.amount, mp.address, mp.size,
	mp.payment_slip, mp.payment_slip_ref, mp.status, mp.approved_by, mp.notes, mp.created_at, mp.updated_at`

func scanManualPayment(scanner interface{ Scan(dest ...any) error }, extra ...any) (models.ManualPayment, error) {
	var p models.ManualPayment
	var size, notes sql.NullString
	var approvedBy sql.NullInt64
	var updated sql.NullTime
	dest := []any{
		&p.ID, &p.UserID, &p.PackageID, &p.Amount, &p.Address, &size,
		&p.PaymentSlipURL, &p.PaymentSlipRef, &p.Status, &approvedBy, &notes, &p.CreatedAt, &updated,
	}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return models.ManualPayment{}, err
	}
	p.Size = nullStringPtr(size)
	p.Notes = nullStringPtr(notes)
	p.ApprovedBy = nullInt64Ptr(approvedBy)
	if updated.Valid {
		p.UpdatedAt = &updated.Time
	}
	return p, nil
}

func (r *ManualPaymentRepository) Create(ctx context.Context, p models.ManualPayment) (models.ManualPayment, error) {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `
		INSERT INTO manual_payments (user_id, package_id, amount, address, size, payment_slip, payment_slip_ref, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		p.UserID, p.PackageID, p.Amount, p.Address, p.Size, p.PaymentSlipURL, p.PaymentSlipRef, models.PaymentStatusPending,
	)
	if err != nil {
		return models.ManualPayment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ManualPayment{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *ManualPaymentRepository) GetByID(ctx context.Context, id int64) (models.ManualPayment, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT `+manualPaymentColumns+`, pk.id, pk.name, pk.price, pk.`+"`range`"+`
		FROM manual_payments mp
		LEFT JOIN packages pk ON pk.id = mp.package_id
		WHERE mp.id = ?`, id)
	var pkgID sql.NullInt64
	var pkgName, pkgRange sql.NullString
	var pkgPrice sql.NullInt64
	p, err := scanManualPayment(row, &pkgID, &pkgName, &pkgPrice, &pkgRange)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ManualPayment{}, models.ErrNoRecord
	}
	if err != nil {
		return models.ManualPayment{}, err
	}
	if pkgID.Valid {
		p.Package = &models.Package{ID: pkgID.Int64, Name: pkgName.String, Price: pkgPrice.Int64, Range: nullStringPtr(pkgRange)}
	}
	return p, nil
}

// GetByIDForUpdate locks the row for the rest of the surrounding transaction.
func (r *ManualPaymentRepository) GetByIDForUpdate(ctx context.Context, id int64) (models.ManualPayment, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+manualPaymentColumns+` FROM manual_payments mp WHERE mp.id = ?`+lockClause(ctx), id)
	p, err := scanManualPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ManualPayment{}, models.ErrNoRecord
	}
	return p, err
}

// LatestByUserAndStatus returns the newest record of the user with the given
// status, or of any status when status is empty.
func (r *ManualPaymentRepository) LatestByUserAndStatus(ctx context.Context, userID int64, status string) (models.ManualPayment, error) {
	w := &whereBuilder{}
	w.add("mp.user_id = ?", userID)
	if status != "" {
		w.add("mp.status = ?", status)
	}
	row := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+manualPaymentColumns+` FROM manual_payments mp`+w.sql()+`
		ORDER BY mp.created_at DESC, mp.id DESC
		LIMIT 1`+lockClause(ctx), w.args...)
	p, err := scanManualPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ManualPayment{}, models.ErrNoRecord
	}
	return p, err
}

// UpdatePending rewrites the editable fields of a pending record.
func (r *ManualPaymentRepository) UpdatePending(ctx context.Context, p models.ManualPayment) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `
		UPDATE manual_payments
		SET package_id = ?, amount = ?, address = ?, size = ?, payment_slip = ?, payment_slip_ref = ?, updated_at = NOW()
		WHERE id = ? AND status = ?`,
		p.PackageID, p.Amount, p.Address, p.Size, p.PaymentSlipURL, p.PaymentSlipRef, p.ID, models.PaymentStatusPending,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *ManualPaymentRepository) UpdateSlip(ctx context.Context, id int64, url, ref string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `
		UPDATE manual_payments SET payment_slip = ?, payment_slip_ref = ?, updated_at = NOW()
		WHERE id = ? AND status = ?`, url, ref, id, models.PaymentStatusPending)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// TransitionStatus moves a record out of fromStatus, recording the approver and notes.
func (r *ManualPaymentRepository) TransitionStatus(ctx context.Context, id int64, fromStatus, toStatus string, approvedBy int64, notes string) error {
	err := fsm.Payment.Apply(ctx, conn(ctx, r.DB), id, fromStatus, toStatus,
		fsm.Column{Name: "approved_by", Value: approvedBy},
		fsm.Column{Name: "notes", Value: notes},
	)
	if errors.Is(err, fsm.ErrStaleStatus) || errors.Is(err, fsm.ErrInvalidTransition) {
		return models.ErrStatusChanged
	}
	return err
}

func (r *ManualPaymentRepository) List(ctx context.Context, f models.PaymentFilter) ([]models.ManualPayment, int64, error) {
	q := conn(ctx, r.DB)
	w := &whereBuilder{}
	if f.UserID != nil {
		w.add("mp.user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		w.add("mp.status = ?", f.Status)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		w.add("(u.name LIKE ? OR u.email LIKE ? OR u.phone LIKE ?)", pattern, pattern, pattern)
	}

	from := "manual_payments mp LEFT JOIN users u ON u.id = mp.user_id"
	total, err := countRows(ctx, q, from, w)
	if err != nil {
		return nil, 0, err
	}

	limit, limitArgs := limitClause(f.Page)
	query := `SELECT ` + manualPaymentColumns + `, u.id, u.name, u.email, u.phone
		FROM ` + from + w.sql() + ` ORDER BY mp.created_at DESC, mp.id DESC` + limit
	rows, err := q.QueryContext(ctx, query, append(w.args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []models.ManualPayment
	for rows.Next() {
		var uid sql.NullInt64
		var name, email, phone sql.NullString
		p, err := scanManualPayment(rows, &uid, &name, &email, &phone)
		if err != nil {
			return nil, 0, err
		}
		if uid.Valid {
			p.User = &models.User{ID: uid.Int64, Name: name.String, Email: email.String, Phone: phone.String}
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrStatusChanged
	}
	return nil
}
