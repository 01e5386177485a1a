package models

import "time"

const (
	UserPackageStatusPending = "pending"
	UserPackageStatusSuccess = "success"
)

// UserPackage records the package a user has paid for. One row per user.
type UserPackage struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	PackageID     int64      `json:"package_id"`
	Total         int64      `json:"total"`
	Status        string     `json:"status"`
	InvoiceID     string     `json:"invoice_id"`
	TransactionID string     `json:"transaction_id"`
	TerminalID    string     `json:"terminal_id"`
	TicketID      *string    `json:"ticket_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type QRPayment struct {
	UserPackage UserPackage `json:"user_package"`
	QRNumber    string      `json:"qr_number"`
}
