package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"varirunBack/internal/models"
)

type RankingRepository struct {
	DB *sql.DB
}

// Increment adds to the user's totals, creating the row on first use.
// Negative deltas are used when an approved result is withdrawn.
func (r *RankingRepository) Increment(ctx context.Context, userID int64, rangeDelta float64, timeDelta int64) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx, `
		INSERT INTO rankings (user_id, total_range, total_time, created_at)
		VALUES (?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			total_range = total_range + VALUES(total_range),
			total_time = total_time + VALUES(total_time),
			updated_at = NOW()`,
		userID, rangeDelta, timeDelta,
	)
	return err
}

func (r *RankingRepository) GetByUserID(ctx context.Context, userID int64) (models.Ranking, error) {
	var rk models.Ranking
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT id, user_id, total_range, total_time FROM rankings WHERE user_id = ?`, userID,
	).Scan(&rk.ID, &rk.UserID, &rk.TotalRange, &rk.TotalTime)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ranking{}, models.ErrNoRecord
	}
	return rk, err
}

func (r *RankingRepository) All(ctx context.Context) ([]models.Ranking, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT id, user_id, total_range, total_time FROM rankings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ranking
	for rows.Next() {
		var rk models.Ranking
		if err := rows.Scan(&rk.ID, &rk.UserID, &rk.TotalRange, &rk.TotalTime); err != nil {
			return nil, err
		}
		out = append(out, rk)
	}
	return out, rows.Err()
}

// Leaderboard ranks runners by total distance. Ties share a rank.
func (r *RankingRepository) Leaderboard(ctx context.Context, f models.LeaderboardFilter) ([]models.LeaderboardEntry, int64, error) {
	q := conn(ctx, r.DB)
	w := &whereBuilder{}
	if f.Range != "" {
		w.add("pk.`range` = ?", f.Range)
	}

	from := `rankings rk
		JOIN users u ON u.id = rk.user_id
		LEFT JOIN packages pk ON pk.id = u.package_id`
	total, err := countRows(ctx, q, from, w)
	if err != nil {
		return nil, 0, err
	}

	limit, limitArgs := limitClause(f.Page)
	query := `SELECT RANK() OVER (ORDER BY rk.total_range DESC) AS rnk,
			rk.user_id, u.name, rk.total_range, rk.total_time, pk.` + "`range`" + `
		FROM ` + from + w.sql() + `
		ORDER BY rnk, rk.user_id` + limit
	rows, err := q.QueryContext(ctx, query, append(w.args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		var rng sql.NullString
		if err := rows.Scan(&e.Rank, &e.UserID, &e.Name, &e.TotalRange, &e.TotalTime, &rng); err != nil {
			return nil, 0, err
		}
		e.PackageRange = nullStringPtr(rng)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// UserNames resolves display names for a set of user ids.
func (r *RankingRepository) UserNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT id, name FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
