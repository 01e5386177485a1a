package models

import "time"

const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

const DefaultApproveNotes = "Payment approved"

// ManualPayment is a bank-slip payment submitted by a runner and reviewed by an admin.
type ManualPayment struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	PackageID      int64      `json:"package_id"`
	Amount         int64      `json:"amount"`
	Address        string     `json:"address"`
	Size           *string    `json:"size"`
	PaymentSlipURL string     `json:"payment_slip"`
	PaymentSlipRef string     `json:"payment_slip_ref,omitempty"`
	Status         string     `json:"status"`
	ApprovedBy     *int64     `json:"approved_by"`
	Notes          *string    `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`

	Package *Package `json:"package,omitempty"`
	User    *User    `json:"user,omitempty"`
}

type SubmitPaymentInput struct {
	UserID    int64
	PackageID int64
	Amount    *int64
	Address   string
	Size      *string
	Slip      *Upload
}

type PaymentFilter struct {
	UserID *int64
	Status string
	Search string
	Page   Pagination
}
