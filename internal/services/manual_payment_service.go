package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"varirunBack/internal/models"
)

const slipFolder = "payment-slips"

// ManualPaymentService runs the bank-slip payment workflow:
// pending -> approved | rejected, both terminal.
type ManualPaymentService struct {
	Tx       Transactor
	Payments ManualPaymentStore
	Packages PackageStore
	Assigner *PackageAssigner
	Images   ImageStore
	Locker   Locker
	Notifier Notifier
	Log      zerolog.Logger
}

// Submit creates a pending payment or rewrites the user's latest pending one.
func (s *ManualPaymentService) Submit(ctx context.Context, in models.SubmitPaymentInput) (models.ManualPayment, error) {
	fields := map[string]string{}
	if in.PackageID <= 0 {
		fields["package_id"] = "package_id is required"
	}
	if strings.TrimSpace(in.Address) == "" {
		fields["address"] = "address is required"
	}
	if in.Amount != nil && *in.Amount < 0 {
		fields["amount"] = "amount must not be negative"
	}
	if len(fields) > 0 {
		return models.ManualPayment{}, models.InvalidInput("validation failed", fields)
	}

	var (
		result   models.ManualPayment
		uploaded *models.StoredFile
		oldRef   string
	)
	err := s.Tx.Exec(ctx, func(ctx context.Context) error {
		pkg, err := s.Packages.GetByID(ctx, in.PackageID)
		if err != nil {
			return notFoundAs(err, "package")
		}

		_, err = s.Payments.LatestByUserAndStatus(ctx, in.UserID, models.PaymentStatusApproved)
		if err == nil {
			return models.Conflict("already has an approved payment")
		}
		if !errors.Is(err, models.ErrNoRecord) {
			return err
		}

		record, err := s.Payments.LatestByUserAndStatus(ctx, in.UserID, models.PaymentStatusPending)
		hasPending := err == nil
		if err != nil && !errors.Is(err, models.ErrNoRecord) {
			return err
		}
		if !hasPending && in.Slip == nil {
			return models.InvalidInput("payment slip required", map[string]string{"payment_slip": "payment slip required"})
		}

		record.UserID = in.UserID
		record.PackageID = pkg.ID
		record.Amount = pkg.Price
		if in.Amount != nil {
			record.Amount = *in.Amount
		}
		record.Address = strings.TrimSpace(in.Address)
		if in.Size != nil {
			record.Size = in.Size
		}

		if in.Slip != nil {
			file, err := s.Images.Upload(ctx, slipFolder, *in.Slip)
			if err != nil {
				return models.UploadFailed(err)
			}
			uploaded = &file
			oldRef = record.PaymentSlipRef
			record.PaymentSlipURL = file.URL
			record.PaymentSlipRef = file.Ref
		}

		if !hasPending {
			result, err = s.Payments.Create(ctx, record)
			return err
		}
		if err := s.Payments.UpdatePending(ctx, record); err != nil {
			if errors.Is(err, models.ErrStatusChanged) {
				return models.Conflict("already processed")
			}
			return err
		}
		result, err = s.Payments.GetByID(ctx, record.ID)
		return err
	})
	if err != nil {
		if uploaded != nil {
			s.discardImage(ctx, uploaded.Ref)
		}
		return models.ManualPayment{}, err
	}

	if oldRef != "" {
		s.discardImage(ctx, oldRef)
	}
	s.Log.Info().Int64("payment_id", result.ID).Int64("user_id", result.UserID).Int64("package_id", result.PackageID).Msg("manual payment submitted")
	return result, nil
}

// Approve marks a pending payment approved and assigns its package to the user.
func (s *ManualPaymentService) Approve(ctx context.Context, paymentID, approverID int64, notes string) (models.ManualPayment, error) {
	unlock, err := acquire(ctx, s.Locker, lockKey("manual_payment", paymentID), "payment is being processed")
	if err != nil {
		return models.ManualPayment{}, err
	}
	defer unlock()

	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = models.DefaultApproveNotes
	}

	var (
		result     models.ManualPayment
		assignment models.UserPackage
	)
	err = s.Tx.Exec(ctx, func(ctx context.Context) error {
		p, err := s.loadPending(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := s.transition(ctx, p.ID, models.PaymentStatusApproved, approverID, notes); err != nil {
			return err
		}
		assignment, err = s.Assigner.AssignApproved(ctx, p.UserID, p.PackageID, p.Amount)
		if err != nil {
			return err
		}
		result, err = s.Payments.GetByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return models.ManualPayment{}, err
	}

	s.Log.Info().Int64("payment_id", result.ID).Int64("user_id", result.UserID).Int64("approved_by", approverID).
		Int64("user_package_id", assignment.ID).Msg("manual payment approved")
	notify(s.Notifier, result.UserID, models.EventPaymentApproved, result)
	return result, nil
}

// Reject marks a pending payment rejected. A reason is required.
func (s *ManualPaymentService) Reject(ctx context.Context, paymentID, approverID int64, notes string) (models.ManualPayment, error) {
	unlock, err := acquire(ctx, s.Locker, lockKey("manual_payment", paymentID), "payment is being processed")
	if err != nil {
		return models.ManualPayment{}, err
	}
	defer unlock()

	notes = strings.TrimSpace(notes)

	var result models.ManualPayment
	err = s.Tx.Exec(ctx, func(ctx context.Context) error {
		p, err := s.loadPending(ctx, paymentID)
		if err != nil {
			return err
		}
		if notes == "" {
			return models.InvalidInput("reason required", map[string]string{"notes": "reason required"})
		}
		if err := s.transition(ctx, p.ID, models.PaymentStatusRejected, approverID, notes); err != nil {
			return err
		}
		result, err = s.Payments.GetByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return models.ManualPayment{}, err
	}

	s.Log.Info().Int64("payment_id", result.ID).Int64("user_id", result.UserID).Int64("approved_by", approverID).Msg("manual payment rejected")
	notify(s.Notifier, result.UserID, models.EventPaymentRejected, result)
	return result, nil
}

// UploadSlip replaces the slip of the user's latest pending payment.
func (s *ManualPaymentService) UploadSlip(ctx context.Context, userID int64, slip *models.Upload) (models.ManualPayment, error) {
	if slip == nil {
		return models.ManualPayment{}, models.InvalidInput("payment slip required", map[string]string{"payment_slip": "payment slip required"})
	}

	var (
		result   models.ManualPayment
		uploaded *models.StoredFile
		oldRef   string
	)
	err := s.Tx.Exec(ctx, func(ctx context.Context) error {
		p, err := s.Payments.LatestByUserAndStatus(ctx, userID, models.PaymentStatusPending)
		if err != nil {
			return notFoundAs(err, "pending payment")
		}

		file, err := s.Images.Upload(ctx, slipFolder, *slip)
		if err != nil {
			return models.UploadFailed(err)
		}
		uploaded = &file
		oldRef = p.PaymentSlipRef

		if err := s.Payments.UpdateSlip(ctx, p.ID, file.URL, file.Ref); err != nil {
			if errors.Is(err, models.ErrStatusChanged) {
				return models.Conflict("already processed")
			}
			return err
		}
		result, err = s.Payments.GetByID(ctx, p.ID)
		return err
	})
	if err != nil {
		if uploaded != nil {
			s.discardImage(ctx, uploaded.Ref)
		}
		return models.ManualPayment{}, err
	}

	if oldRef != "" {
		s.discardImage(ctx, oldRef)
	}
	s.Log.Info().Int64("payment_id", result.ID).Int64("user_id", userID).Msg("payment slip replaced")
	return result, nil
}

// GetCurrentPayment returns the user's most recent payment of any status.
func (s *ManualPaymentService) GetCurrentPayment(ctx context.Context, userID int64) (models.ManualPayment, error) {
	p, err := s.Payments.LatestByUserAndStatus(ctx, userID, "")
	if err != nil {
		return models.ManualPayment{}, notFoundAs(err, "payment")
	}
	return s.Payments.GetByID(ctx, p.ID)
}

// GetPayment returns one payment. Non-admins only see their own.
func (s *ManualPaymentService) GetPayment(ctx context.Context, id, requesterID int64, admin bool) (models.ManualPayment, error) {
	p, err := s.Payments.GetByID(ctx, id)
	if err != nil {
		return models.ManualPayment{}, notFoundAs(err, "payment")
	}
	if !admin && p.UserID != requesterID {
		return models.ManualPayment{}, models.NotFound("payment")
	}
	return p, nil
}

func (s *ManualPaymentService) GetForUser(ctx context.Context, userID int64, page models.Pagination) (models.Paged[models.ManualPayment], error) {
	return s.list(ctx, models.PaymentFilter{UserID: &userID, Page: page})
}

func (s *ManualPaymentService) GetForAdmin(ctx context.Context, f models.PaymentFilter) (models.Paged[models.ManualPayment], error) {
	if f.Status != "" && f.Status != models.PaymentStatusPending && f.Status != models.PaymentStatusApproved && f.Status != models.PaymentStatusRejected {
		return models.Paged[models.ManualPayment]{}, models.InvalidInput("invalid status", map[string]string{"status": "must be pending, approved or rejected"})
	}
	return s.list(ctx, f)
}

func (s *ManualPaymentService) list(ctx context.Context, f models.PaymentFilter) (models.Paged[models.ManualPayment], error) {
	items, total, err := s.Payments.List(ctx, f)
	if err != nil {
		return models.Paged[models.ManualPayment]{}, err
	}
	return models.NewPaged(items, f.Page, total), nil
}

// loadPending locks the payment and checks it can still be decided.
func (s *ManualPaymentService) loadPending(ctx context.Context, id int64) (models.ManualPayment, error) {
	p, err := s.Payments.GetByIDForUpdate(ctx, id)
	if err != nil {
		return models.ManualPayment{}, notFoundAs(err, "payment")
	}
	if p.Status != models.PaymentStatusPending {
		return models.ManualPayment{}, models.Conflict("already processed")
	}
	return p, nil
}

func (s *ManualPaymentService) transition(ctx context.Context, id int64, to string, approverID int64, notes string) error {
	err := s.Payments.TransitionStatus(ctx, id, models.PaymentStatusPending, to, approverID, notes)
	if errors.Is(err, models.ErrStatusChanged) {
		return models.Conflict("already processed")
	}
	return err
}

func (s *ManualPaymentService) discardImage(ctx context.Context, ref string) {
	if err := s.Images.Delete(context.WithoutCancel(ctx), ref); err != nil {
		s.Log.Warn().Err(err).Str("ref", ref).Msg("failed to delete payment slip")
	}
}
