package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"varirunBack/internal/models"
)

type UserPackageRepository struct {
	DB *sql.DB
}

const userPackageColumns = `id, user_id, package_id, total, status, invoice_id, transaction_id, terminal_id, ticket_id, created_at, updated_at`

// identifier columns that may be checked for uniqueness
var userPackageIDColumns = map[string]struct{}{
	"invoice_id":     {},
	"transaction_id": {},
	"terminal_id":    {},
	"ticket_id":      {},
}

func scanUserPackage(scanner interface{ Scan(dest ...any) error }) (models.UserPackage, error) {
	var up models.UserPackage
	var ticket sql.NullString
	var updated sql.NullTime
	err := scanner.Scan(&up.ID, &up.UserID, &up.PackageID, &up.Total, &up.Status,
		&up.InvoiceID, &up.TransactionID, &up.TerminalID, &ticket, &up.CreatedAt, &updated)
	if err != nil {
		return models.UserPackage{}, err
	}
	up.TicketID = nullStringPtr(ticket)
	if updated.Valid {
		up.UpdatedAt = &updated.Time
	}
	return up, nil
}

// GetByUserID locks the row when called inside a transaction.
func (r *UserPackageRepository) GetByUserID(ctx context.Context, userID int64) (models.UserPackage, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT `+userPackageColumns+` FROM user_packages WHERE user_id = ?`+lockClause(ctx), userID)
	up, err := scanUserPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserPackage{}, models.ErrNoRecord
	}
	return up, err
}

func (r *UserPackageRepository) Create(ctx context.Context, up models.UserPackage) (models.UserPackage, error) {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `
		INSERT INTO user_packages (user_id, package_id, total, status, invoice_id, transaction_id, terminal_id, ticket_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		up.UserID, up.PackageID, up.Total, up.Status, up.InvoiceID, up.TransactionID, up.TerminalID, up.TicketID,
	)
	if err != nil {
		return models.UserPackage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.UserPackage{}, err
	}
	up.ID = id
	return up, nil
}

func (r *UserPackageRepository) Update(ctx context.Context, up models.UserPackage) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx, `
		UPDATE user_packages
		SET package_id = ?, total = ?, status = ?, invoice_id = ?, transaction_id = ?, terminal_id = ?, ticket_id = ?, updated_at = NOW()
		WHERE id = ?`,
		up.PackageID, up.Total, up.Status, up.InvoiceID, up.TransactionID, up.TerminalID, up.TicketID, up.ID,
	)
	return err
}

// ExistsBy reports whether any assignment already uses value in the given identifier column.
func (r *UserPackageRepository) ExistsBy(ctx context.Context, column, value string) (bool, error) {
	if _, ok := userPackageIDColumns[column]; !ok {
		return false, fmt.Errorf("unknown identifier column %q", column)
	}
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM user_packages WHERE %s = ?)`, column), value).Scan(&exists)
	return exists, err
}
