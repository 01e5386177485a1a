package services

import (
	"context"

	"varirunBack/internal/models"
)

type SummaryService struct {
	Summary SummaryStore
}

func (s *SummaryService) Revenue(ctx context.Context, packageID *int64) (models.RevenueSummary, error) {
	rows, err := s.Summary.Revenue(ctx, packageID)
	if err != nil {
		return models.RevenueSummary{}, err
	}
	out := models.RevenueSummary{Packages: rows}
	if out.Packages == nil {
		out.Packages = []models.RevenueRow{}
	}
	for _, r := range rows {
		out.Total += r.Revenue
	}
	return out, nil
}

func (s *SummaryService) Totals(ctx context.Context) (models.RangeTotals, error) {
	return s.Summary.Totals(ctx)
}
