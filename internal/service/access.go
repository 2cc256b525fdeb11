package service

import (
	"errors"
	"log"

	"internship_portal/internal/apperror"
	"internship_portal/internal/model"
	"internship_portal/internal/repository"
)

// Capability names an action gated by role
type Capability string

const (
	CapManagePostings       Capability = "postings:manage"
	CapReviewApplications   Capability = "applications:review"
	CapEditApplicationNotes Capability = "applications:notes"
	CapDeleteApplications   Capability = "applications:delete"
	CapListAllApplications  Capability = "applications:list_all"
	CapListUsers            Capability = "users:list"
	CapViewStats            Capability = "stats:view"
	CapApply                Capability = "applications:apply"
	CapListOwnApplications  Capability = "applications:list_own"
	CapEditOwnProfile       Capability = "profile:edit_own"
)

var roleCapabilities = map[string]map[Capability]bool{
	model.RoleAdmin: {
		CapManagePostings:       true,
		CapReviewApplications:   true,
		CapEditApplicationNotes: true,
		CapDeleteApplications:   true,
		CapListAllApplications:  true,
		CapListUsers:            true,
		CapViewStats:            true,
		CapListOwnApplications:  true,
		CapEditOwnProfile:       true,
	},
	model.RoleStudent: {
		CapApply:               true,
		CapListOwnApplications: true,
		CapEditOwnProfile:      true,
	},
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWrongPassword   = errors.New("password does not match")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSession       = errors.New("no session")
)

// Can reports whether the session's role grants the capability
func Can(s *model.Session, c Capability) bool {
	if s == nil {
		return false
	}
	return roleCapabilities[s.Role][c]
}

// authorize is called by every gated operation before touching storage
func authorize(s *model.Session, c Capability) error {
	if s == nil {
		return apperror.InvalidCredential("authentication required", ErrNoSession)
	}
	if !Can(s, c) {
		log.Printf("WARN: user %d (%s) denied %s", s.UserID, s.Role, c)
		return apperror.AccessDenied("you do not have permission to perform this action", nil)
	}
	return nil
}

// storageErr translates a repository failure into the caller-facing taxonomy
func storageErr(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repository.ErrTimeout):
		return apperror.Timeout("the storage service did not respond in time", err)
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFoundMsg, err)
	case errors.Is(err, repository.ErrConflict):
		return apperror.Conflict("the record conflicts with an existing one", err)
	case errors.Is(err, repository.ErrUnknownField):
		return apperror.Validation("unsupported filter field", err)
	default:
		return apperror.Transport("the storage service is unavailable", err)
	}
}
