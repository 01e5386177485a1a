package repositories

import (
	"context"
	"database/sql"
	"errors"

	"varirunBack/internal/models"
)

type PackageRepository struct {
	DB *sql.DB
}

const packageColumns = `id, name, price, ` + "`range`" + `, created_at, updated_at`

func scanPackage(scanner interface{ Scan(dest ...any) error }) (models.Package, error) {
	var p models.Package
	var rng sql.NullString
	var updated sql.NullTime
	if err := scanner.Scan(&p.ID, &p.Name, &p.Price, &rng, &p.CreatedAt, &updated); err != nil {
		return models.Package{}, err
	}
	p.Range = nullStringPtr(rng)
	if updated.Valid {
		p.UpdatedAt = &updated.Time
	}
	return p, nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id int64) (models.Package, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = ?`, id)
	p, err := scanPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Package{}, models.ErrNoRecord
	}
	return p, err
}

func (r *PackageRepository) List(ctx context.Context, page models.Pagination) ([]models.Package, int64, error) {
	q := conn(ctx, r.DB)
	w := &whereBuilder{}
	total, err := countRows(ctx, q, "packages", w)
	if err != nil {
		return nil, 0, err
	}

	limit, limitArgs := limitClause(page)
	rows, err := q.QueryContext(ctx, `SELECT `+packageColumns+` FROM packages ORDER BY id`+limit, limitArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var packages []models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, 0, err
		}
		packages = append(packages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return packages, total, nil
}
