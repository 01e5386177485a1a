package repositories

import (
	"context"
	"database/sql"

	"varirunBack/internal/models"
)

type SummaryRepository struct {
	DB *sql.DB
}

// Revenue sums successful assignments per package.
func (r *SummaryRepository) Revenue(ctx context.Context, packageID *int64) ([]models.RevenueRow, error) {
	w := &whereBuilder{}
	w.add("up.status = ?", models.UserPackageStatusSuccess)
	if packageID != nil {
		w.add("up.package_id = ?", *packageID)
	}

	rows, err := conn(ctx, r.DB).QueryContext(ctx, `
		SELECT pk.id, pk.name, pk.`+"`range`"+`, COUNT(up.id), COALESCE(SUM(up.total), 0)
		FROM user_packages up
		JOIN packages pk ON pk.id = up.package_id`+w.sql()+`
		GROUP BY pk.id, pk.name, pk.`+"`range`"+`
		ORDER BY pk.id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RevenueRow
	for rows.Next() {
		var row models.RevenueRow
		var rng sql.NullString
		if err := rows.Scan(&row.PackageID, &row.PackageName, &rng, &row.Buyers, &row.Revenue); err != nil {
			return nil, err
		}
		row.Range = nullStringPtr(rng)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SummaryRepository) Totals(ctx context.Context) (models.RangeTotals, error) {
	var t models.RangeTotals
	err := conn(ctx, r.DB).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_range), 0), COALESCE(SUM(total_time), 0), COUNT(DISTINCT user_id)
		FROM rankings`).Scan(&t.TotalRange, &t.TotalTime, &t.Runners)
	return t, err
}
