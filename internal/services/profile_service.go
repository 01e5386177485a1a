package services

import (
	"context"
	"errors"

	"varirunBack/internal/models"
)

type ProfileService struct {
	Users        UserStore
	Rankings     RankingStore
	UserPackages UserPackageStore
	Payments     ManualPaymentStore
}

// Me returns the caller. Runners also get their ranking, package assignment
// and latest manual payment of any status.
func (s *ProfileService) Me(ctx context.Context, userID int64) (models.Profile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return models.Profile{}, notFoundAs(err, "user")
	}
	profile := models.Profile{User: u}
	if u.Role != models.RoleUser {
		return profile, nil
	}

	runner := &models.RunnerProfile{}
	rk, err := s.Rankings.GetByUserID(ctx, userID)
	if runner.Ranking, err = optional(rk, err); err != nil {
		return models.Profile{}, err
	}
	up, err := s.UserPackages.GetByUserID(ctx, userID)
	if runner.Package, err = optional(up, err); err != nil {
		return models.Profile{}, err
	}
	mp, err := s.Payments.LatestByUserAndStatus(ctx, userID, "")
	if runner.ManualPayment, err = optional(mp, err); err != nil {
		return models.Profile{}, err
	}
	profile.Runner = runner
	return profile, nil
}

// optional turns a missing row into nil.
func optional[T any](v T, err error) (*T, error) {
	switch {
	case errors.Is(err, models.ErrNoRecord):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &v, nil
}
