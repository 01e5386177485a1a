package services

import (
	"context"

	"github.com/rs/zerolog"

	"varirunBack/internal/models"
)

const defaultTopSize = 10

type RankingService struct {
	Rankings RankingStore
	Cache    LeaderboardCache
	// MaxTop caps Top. Zero means no cap.
	MaxTop int
	Log    zerolog.Logger
}

func (s *RankingService) Leaderboard(ctx context.Context, f models.LeaderboardFilter) (models.Paged[models.LeaderboardEntry], error) {
	entries, total, err := s.Rankings.Leaderboard(ctx, f)
	if err != nil {
		return models.Paged[models.LeaderboardEntry]{}, err
	}
	return models.NewPaged(entries, f.Page, total), nil
}

// Top serves the best n runners from the cache, falling back to the database
// when the cache is empty or unreachable.
func (s *RankingService) Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		n = defaultTopSize
	}
	if s.MaxTop > 0 && n > s.MaxTop {
		n = s.MaxTop
	}

	if s.Cache != nil {
		entries, err := s.Cache.Top(ctx, n)
		if err != nil {
			s.Log.Warn().Err(err).Msg("leaderboard cache unavailable")
		} else if len(entries) > 0 {
			return s.withNames(ctx, entries)
		}
	}

	entries, _, err := s.Rankings.Leaderboard(ctx, models.LeaderboardFilter{Page: models.Pagination{Page: 1, PerPage: n}})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}

func (s *RankingService) withNames(ctx context.Context, entries []models.LeaderboardEntry) ([]models.LeaderboardEntry, error) {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	names, err := s.Rankings.UserNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Name = names[entries[i].UserID]
	}
	return entries, nil
}

// Rebuild reloads the cache from the rankings table.
func (s *RankingService) Rebuild(ctx context.Context) (int, error) {
	if s.Cache == nil {
		return 0, nil
	}
	all, err := s.Rankings.All(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.Cache.Replace(ctx, all); err != nil {
		return 0, err
	}
	return len(all), nil
}
