package models

import "time"

const (
	EventPaymentApproved = "payment.approved"
	EventPaymentRejected = "payment.rejected"
	EventRunResultStatus = "run_result.status"
	EventQRPaid          = "qr.paid"
)

type Notification struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}
