package models

import "time"

const (
	RunStatusPending = "pending"
	RunStatusApprove = "approve"
	RunStatusReject  = "reject"
)

func IsRunStatus(s string) bool {
	return s == RunStatusPending || s == RunStatusApprove || s == RunStatusReject
}

type RunResult struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Range             float64    `json:"range"`
	Time              int64      `json:"time"`
	Status            string     `json:"status"`
	RejectDescription *string    `json:"reject_description"`
	ImageURL          string     `json:"image"`
	ImageRef          string     `json:"image_ref,omitempty"`
	ApprovedBy        *int64     `json:"approved_by"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`

	User *User `json:"user,omitempty"`
}

// SubmitRunResultInput keeps range and time as raw form values so that all
// field errors can be reported together.
type SubmitRunResultInput struct {
	UserID int64
	Range  string
	Time   string
	Image  *Upload
}

type UpdateRunStatusInput struct {
	ResultID          int64
	Status            string
	RejectDescription *string
	ApprovedBy        int64
}

type RunResultFilter struct {
	UserID *int64
	Status string
	Page   Pagination
}
