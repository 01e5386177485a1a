package services

import (
	"context"
	"errors"

	"varirunBack/internal/models"
)

type PackageService struct {
	Packages     PackageStore
	UserPackages UserPackageStore
}

// List returns the catalog and, for a known user, the user's own assignment.
func (s *PackageService) List(ctx context.Context, userID int64, page models.Pagination) (models.PackageList, error) {
	packages, total, err := s.Packages.List(ctx, page)
	if err != nil {
		return models.PackageList{}, err
	}
	paged := models.NewPaged(packages, page, total)
	out := models.PackageList{Data: paged.Data, Pagination: paged.Pagination}

	if userID > 0 {
		up, err := s.UserPackages.GetByUserID(ctx, userID)
		switch {
		case err == nil:
			out.MyPackage = &up
		case !errors.Is(err, models.ErrNoRecord):
			return models.PackageList{}, err
		}
	}
	return out, nil
}

func (s *PackageService) Get(ctx context.Context, id int64) (models.Package, error) {
	pkg, err := s.Packages.GetByID(ctx, id)
	if err != nil {
		return models.Package{}, notFoundAs(err, "package")
	}
	return pkg, nil
}
