package services

import (
	"context"
	"errors"

	"varirunBack/internal/models"
)

// PackageAssigner owns the user_packages row of each user and keeps
// users.package_id equal to it once paid.
type PackageAssigner struct {
	UserPackages UserPackageStore
	Users        UserStore
	IDs          *IDGenerator
}

// AssignApproved upserts a paid assignment with fresh identifiers.
// Must run inside a transaction.
func (a *PackageAssigner) AssignApproved(ctx context.Context, userID, packageID, total int64) (models.UserPackage, error) {
	ids, err := a.IDs.generateAll(ctx, true)
	if err != nil {
		return models.UserPackage{}, err
	}

	up := models.UserPackage{
		UserID:        userID,
		PackageID:     packageID,
		Total:         total,
		Status:        models.UserPackageStatusSuccess,
		InvoiceID:     ids.Invoice,
		TransactionID: ids.Transaction,
		TerminalID:    ids.Terminal,
		TicketID:      &ids.Ticket,
	}

	existing, err := a.UserPackages.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, models.ErrNoRecord):
		up, err = a.UserPackages.Create(ctx, up)
		if err != nil {
			return models.UserPackage{}, err
		}
	case err != nil:
		return models.UserPackage{}, err
	default:
		up.ID = existing.ID
		up.CreatedAt = existing.CreatedAt
		if err := a.UserPackages.Update(ctx, up); err != nil {
			return models.UserPackage{}, err
		}
	}

	if err := a.mirror(ctx, userID, packageID); err != nil {
		return models.UserPackage{}, err
	}
	return up, nil
}

// MarkPaid completes an existing assignment with the gateway ticket.
// Must run inside a transaction.
func (a *PackageAssigner) MarkPaid(ctx context.Context, up models.UserPackage, pkg models.Package, ticket string) (models.UserPackage, error) {
	up.PackageID = pkg.ID
	up.Total = pkg.Price
	up.Status = models.UserPackageStatusSuccess
	up.TicketID = &ticket
	if err := a.UserPackages.Update(ctx, up); err != nil {
		return models.UserPackage{}, err
	}
	if err := a.mirror(ctx, up.UserID, pkg.ID); err != nil {
		return models.UserPackage{}, err
	}
	return up, nil
}

func (a *PackageAssigner) mirror(ctx context.Context, userID, packageID int64) error {
	return notFoundAs(a.Users.SetPackage(ctx, userID, packageID), "user")
}
