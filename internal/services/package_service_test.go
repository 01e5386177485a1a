package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"varirunBack/internal/models"
)

func TestPackageList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	list, err := f.packages.List(ctx, 7, models.Pagination{})
	require.NoError(t, err)
	require.Len(t, list.Data, 3)
	require.Nil(t, list.MyPackage)
	require.Nil(t, list.Pagination)

	_, err = f.qr.RequestQR(ctx, 7, 3)
	require.NoError(t, err)

	list, err = f.packages.List(ctx, 7, models.Pagination{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, list.Data, 2)
	require.NotNil(t, list.MyPackage)
	require.Equal(t, int64(3), list.MyPackage.PackageID)
	require.Equal(t, int64(2), list.Pagination.TotalPages)
}

func TestPackageGet(t *testing.T) {
	f := newFixture()
	pkg, err := f.packages.Get(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(290000), pkg.Price)

	_, err = f.packages.Get(context.Background(), 42)
	require.ErrorIs(t, err, models.ErrNotFound)
}

type memSummary struct {
	rows []models.RevenueRow
}

func (m memSummary) Revenue(context.Context, *int64) ([]models.RevenueRow, error) { return m.rows, nil }
func (m memSummary) Totals(context.Context) (models.RangeTotals, error) {
	return models.RangeTotals{TotalRange: 130, TotalTime: 1200, Runners: 2}, nil
}

func TestSummaryRevenueTotal(t *testing.T) {
	s := &SummaryService{Summary: memSummary{rows: []models.RevenueRow{
		{PackageID: 1, Revenue: 480000, Buyers: 2},
		{PackageID: 3, Revenue: 290000, Buyers: 1},
	}}}
	out, err := s.Revenue(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(770000), out.Total)

	empty, err := (&SummaryService{Summary: memSummary{}}).Revenue(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, empty.Packages)
	require.Zero(t, empty.Total)
}
