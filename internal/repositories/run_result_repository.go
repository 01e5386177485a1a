package repositories

import (
	"context"
	"database/sql"
	"errors"

	"varirunBack/internal/fsm"
	"varirunBack/internal/models"
)

type RunResultRepository struct {
	DB *sql.DB
}

const runResultColumns = `rr.id, rr.user_id, rr.` + "`range`" + `, rr.time, rr.status, rr.reject_description,
	rr.image, rr.image_ref, rr.approved_by, rr.created_at, rr.updated_at`

func scanRunResult(scanner interface{ Scan(dest ...any) error }, extra ...any) (models.RunResult, error) {
	var rr models.RunResult
	var reject, image, imageRef sql.NullString
	var approvedBy sql.NullInt64
	var updated sql.NullTime
	dest := []any{&rr.ID, &rr.UserID, &rr.Range, &rr.Time, &rr.Status, &reject,
		&image, &imageRef, &approvedBy, &rr.CreatedAt, &updated}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return models.RunResult{}, err
	}
	rr.RejectDescription = nullStringPtr(reject)
	rr.ImageURL = image.String
	rr.ImageRef = imageRef.String
	rr.ApprovedBy = nullInt64Ptr(approvedBy)
	if updated.Valid {
		rr.UpdatedAt = &updated.Time
	}
	return rr, nil
}

func (r *RunResultRepository) Create(ctx context.Context, rr models.RunResult) (models.RunResult, error) {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `
		INSERT INTO run_results (user_id, `+"`range`"+`, time, status, image, image_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())`,
		rr.UserID, rr.Range, rr.Time, models.RunStatusPending, rr.ImageURL, rr.ImageRef,
	)
	if err != nil {
		return models.RunResult{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.RunResult{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID locks the row when called inside a transaction.
func (r *RunResultRepository) GetByID(ctx context.Context, id int64) (models.RunResult, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT `+runResultColumns+` FROM run_results rr WHERE rr.id = ?`+lockClause(ctx), id)
	rr, err := scanRunResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RunResult{}, models.ErrNoRecord
	}
	return rr, err
}

// UpdateStatus writes the new status when the row still holds fromStatus.
// A nil reject description leaves the stored one untouched.
func (r *RunResultRepository) UpdateStatus(ctx context.Context, id int64, fromStatus string, in models.UpdateRunStatusInput) error {
	cols := []fsm.Column{{Name: "approved_by", Value: in.ApprovedBy}}
	if in.RejectDescription != nil {
		cols = append(cols, fsm.Column{Name: "reject_description", Value: *in.RejectDescription})
	}
	err := fsm.RunResult.Apply(ctx, conn(ctx, r.DB), id, fromStatus, in.Status, cols...)
	if errors.Is(err, fsm.ErrStaleStatus) || errors.Is(err, fsm.ErrInvalidTransition) {
		return models.ErrStatusChanged
	}
	return err
}

func (r *RunResultRepository) List(ctx context.Context, f models.RunResultFilter) ([]models.RunResult, int64, error) {
	q := conn(ctx, r.DB)
	w := &whereBuilder{}
	if f.UserID != nil {
		w.add("rr.user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		w.add("rr.status = ?", f.Status)
	}

	from := "run_results rr LEFT JOIN users u ON u.id = rr.user_id"
	total, err := countRows(ctx, q, from, w)
	if err != nil {
		return nil, 0, err
	}

	limit, limitArgs := limitClause(f.Page)
	rows, err := q.QueryContext(ctx, `SELECT `+runResultColumns+`, u.id, u.name
		FROM `+from+w.sql()+` ORDER BY rr.created_at DESC, rr.id DESC`+limit, append(w.args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []models.RunResult
	for rows.Next() {
		var uid sql.NullInt64
		var name sql.NullString
		rr, err := scanRunResult(rows, &uid, &name)
		if err != nil {
			return nil, 0, err
		}
		if uid.Valid {
			rr.User = &models.User{ID: uid.Int64, Name: name.String}
		}
		results = append(results, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}
