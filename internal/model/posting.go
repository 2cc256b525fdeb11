package model

import "time"

const (
	ModalityOnSite = "on-site"
	ModalityRemote = "remote"
	ModalityHybrid = "hybrid"

	PostingStatusActive = "active"
	PostingStatusClosed = "closed"
)

// Areas lists the posting categories accepted by the portal
var Areas = []string{
	"technology", "administration", "marketing", "human_resources",
	"finance", "design", "engineering", "other",
}

// Posting is an internship listing created by an admin
type Posting struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Area         string    `json:"area"`
	Duration     string    `json:"duration"`
	Modality     string    `json:"modality"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreatePostingRequest is used for creating a new posting
type CreatePostingRequest struct {
	Title        string `json:"title" binding:"required"`
	Company      string `json:"company" binding:"required"`
	Area         string `json:"area" binding:"required,oneof=technology administration marketing human_resources finance design engineering other"`
	Duration     string `json:"duration" binding:"required"`
	Modality     string `json:"modality" binding:"required,oneof=on-site remote hybrid"`
	Location     string `json:"location" binding:"required"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Status       string `json:"status" binding:"omitempty,oneof=active closed"`
}

// UpdatePostingRequest is a partial posting update
type UpdatePostingRequest struct {
	Title        *string `json:"title,omitempty"`
	Company      *string `json:"company,omitempty"`
	Area         *string `json:"area,omitempty" binding:"omitempty,oneof=technology administration marketing human_resources finance design engineering other"`
	Duration     *string `json:"duration,omitempty"`
	Modality     *string `json:"modality,omitempty" binding:"omitempty,oneof=on-site remote hybrid"`
	Location     *string `json:"location,omitempty"`
	Description  *string `json:"description,omitempty"`
	Requirements *string `json:"requirements,omitempty"`
	Status       *string `json:"status,omitempty" binding:"omitempty,oneof=active closed"`
}

// PostingFilters narrows posting listings; empty fields are ignored
type PostingFilters struct {
	Area     string `form:"area"`
	Modality string `form:"modality"`
	Location string `form:"location"`
	Status   string `form:"status"`
}
