package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"varirunBack/internal/models"
	"varirunBack/internal/onepay"
)

// QRPaymentService sells packages through BCEL OnePay QR codes.
type QRPaymentService struct {
	Tx           Transactor
	Packages     PackageStore
	UserPackages UserPackageStore
	Assigner     *PackageAssigner
	IDs          *IDGenerator
	Gateway      PaymentGateway
	Notifier     Notifier
	Log          zerolog.Logger
}

// RequestQR prepares a pending assignment for the package and returns the QR payload.
func (s *QRPaymentService) RequestQR(ctx context.Context, userID, packageID int64) (models.QRPayment, error) {
	var out models.QRPayment
	err := s.Tx.Exec(ctx, func(ctx context.Context) error {
		pkg, err := s.Packages.GetByID(ctx, packageID)
		if err != nil {
			return notFoundAs(err, "package")
		}

		up, err := s.UserPackages.GetByUserID(ctx, userID)
		switch {
		case errors.Is(err, models.ErrNoRecord):
			ids, err := s.IDs.generateAll(ctx, false)
			if err != nil {
				return err
			}
			up, err = s.UserPackages.Create(ctx, models.UserPackage{
				UserID:        userID,
				PackageID:     pkg.ID,
				Total:         pkg.Price,
				Status:        models.UserPackageStatusPending,
				InvoiceID:     ids.Invoice,
				TransactionID: ids.Transaction,
				TerminalID:    ids.Terminal,
			})
			if err != nil {
				return err
			}
		case err != nil:
			return err
		case up.Status == models.UserPackageStatusSuccess:
			return models.Conflict("package already paid")
		default:
			up.PackageID = pkg.ID
			up.Total = pkg.Price
			if err := s.UserPackages.Update(ctx, up); err != nil {
				return err
			}
		}

		out = models.QRPayment{
			UserPackage: up,
			QRNumber: s.Gateway.Code(onepay.QRData{
				TransactionID: up.TransactionID,
				InvoiceID:     up.InvoiceID,
				TerminalID:    up.TerminalID,
				Description:   "Payment for " + pkg.Name,
				Amount:        pkg.Price,
			}),
		}
		return nil
	})
	if err != nil {
		return models.QRPayment{}, err
	}
	return out, nil
}

// ConfirmQR checks the gateway for the paid transaction and completes the assignment.
// Only the package and transaction the QR was issued for can be confirmed. An
// empty transactionID falls back to the one stored on the assignment.
func (s *QRPaymentService) ConfirmQR(ctx context.Context, userID, packageID int64, transactionID string) (models.UserPackage, error) {
	up, err := s.UserPackages.GetByUserID(ctx, userID)
	if err != nil {
		return models.UserPackage{}, notFoundAs(err, "payment")
	}
	if err := checkConfirmable(up, packageID, transactionID); err != nil {
		return models.UserPackage{}, err
	}
	transactionID = up.TransactionID

	tx, err := s.Gateway.GetTransaction(ctx, transactionID)
	if err != nil {
		s.Log.Warn().Err(err).Str("transaction_id", transactionID).Msg("onepay transaction lookup failed")
		return models.UserPackage{}, &models.AppError{Kind: models.ErrNotFound, Message: "transaction not found", Err: err}
	}

	var paid models.UserPackage
	err = s.Tx.Exec(ctx, func(ctx context.Context) error {
		up, err := s.UserPackages.GetByUserID(ctx, userID)
		if err != nil {
			return notFoundAs(err, "payment")
		}
		if err := checkConfirmable(up, packageID, transactionID); err != nil {
			return err
		}
		pkg, err := s.Packages.GetByID(ctx, packageID)
		if err != nil {
			return notFoundAs(err, "package")
		}
		paid, err = s.Assigner.MarkPaid(ctx, up, pkg, tx.Ticket)
		return err
	})
	if err != nil {
		return models.UserPackage{}, err
	}

	s.Log.Info().Int64("user_id", userID).Int64("package_id", paid.PackageID).Str("transaction_id", transactionID).Msg("qr payment confirmed")
	notify(s.Notifier, userID, models.EventQRPaid, paid)
	return paid, nil
}

func checkConfirmable(up models.UserPackage, packageID int64, transactionID string) error {
	switch {
	case up.Status == models.UserPackageStatusSuccess:
		return models.Conflict("package already paid")
	case up.PackageID != packageID:
		return models.Conflict("qr was issued for another package")
	case transactionID != "" && transactionID != up.TransactionID:
		return models.Conflict("transaction does not belong to this payment")
	}
	return nil
}
