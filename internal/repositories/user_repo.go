package repositories

import (
	"context"
	"database/sql"
	"errors"

	"varirunBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `u.id, u.name, u.email, u.phone, u.password, u.package_id, COALESCE(ro.name, ''), u.created_at, u.updated_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (models.User, error) {
	var u models.User
	var email, phone sql.NullString
	var pkg sql.NullInt64
	var updated sql.NullTime
	if err := scanner.Scan(&u.ID, &u.Name, &email, &phone, &u.Password, &pkg, &u.Role, &u.CreatedAt, &updated); err != nil {
		return models.User{}, err
	}
	u.Email = email.String
	u.Phone = phone.String
	u.PackageID = nullInt64Ptr(pkg)
	if updated.Valid {
		u.UpdatedAt = &updated.Time
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users u LEFT JOIN roles ro ON ro.id = u.role_id
		WHERE u.id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNoRecord
	}
	return u, err
}

// GetByLogin finds a user by email or phone.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (models.User, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users u LEFT JOIN roles ro ON ro.id = u.role_id
		WHERE u.email = ? OR u.phone = ?
		LIMIT 1`, login, login)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNoRecord
	}
	return u, err
}

// SetPackage mirrors the user's paid package onto the user row.
func (r *UserRepository) SetPackage(ctx context.Context, userID, packageID int64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE users SET package_id = ?, updated_at = NOW() WHERE id = ?`, packageID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNoRecord
	}
	return nil
}
