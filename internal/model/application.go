package model

import "time"

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

const (
	ScopeOwn = "own"
	ScopeAll = "all"
)

// Application is a student's submission against a posting
type Application struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	PostingID     int64     `json:"posting_id"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"`
	AttachmentRef *string   `json:"attachment_ref,omitempty"`
	Notes         *string   `json:"notes,omitempty"` // admin only, cleared before reaching students

	Posting   *Posting        `json:"posting,omitempty"`
	Applicant *ApplicantBrief `json:"applicant,omitempty"`
}

// ApplicantBrief is the embedded student contact shown to admins
type ApplicantBrief struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// ApplyRequest is used by a student applying to a posting
type ApplyRequest struct {
	PostingID     int64   `json:"posting_id" binding:"required,gt=0"`
	AttachmentRef *string `json:"attachment_ref"`
}

// SetStatusRequest changes the review status of an application
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// UpdateNotesRequest replaces the admin notes on an application
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// Stats is the admin dashboard summary
type Stats struct {
	TotalPostings       int64 `json:"total_postings"`
	TotalApplications   int64 `json:"total_applications"`
	PendingApplications int64 `json:"pending_applications"`
}
