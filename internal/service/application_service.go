package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"internship_portal/internal/apperror"
	"internship_portal/internal/model"
	"internship_portal/internal/repository"
)

var applicationStatuses = []string{model.ApplicationStatusPending, model.ApplicationStatusApproved, model.ApplicationStatusRejected}

// ApplicationService defines operations for applications
type ApplicationService interface {
	Apply(ctx context.Context, session *model.Session, req model.ApplyRequest) (*model.Application, error)
	ListApplications(ctx context.Context, session *model.Session, scope string, status string) ([]model.Application, error)
	SetApplicationStatus(ctx context.Context, session *model.Session, id int64, status string) (*model.Application, error)
	UpdateApplicationNotes(ctx context.Context, session *model.Session, id int64, notes string) (*model.Application, error)
	DeleteApplication(ctx context.Context, session *model.Session, id int64) error
	ExportApplicationsCSV(ctx context.Context, session *model.Session, status string) (*bytes.Buffer, error)
}

type applicationService struct {
	repo        repository.ApplicationRepository
	postingRepo repository.PostingRepository
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(repo repository.ApplicationRepository, postingRepo repository.PostingRepository) ApplicationService {
	return &applicationService{repo: repo, postingRepo: postingRepo}
}

// Apply submits an application for the session's own user
func (s *applicationService) Apply(ctx context.Context, session *model.Session, req model.ApplyRequest) (*model.Application, error) {
	if err := authorize(session, CapApply); err != nil {
		return nil, err
	}
	if req.PostingID <= 0 {
		return nil, apperror.Validation("posting_id is required", nil)
	}

	posting, err := s.postingRepo.FindByID(ctx, req.PostingID)
	if err != nil {
		return nil, storageErr(err, "posting not found")
	}
	if posting == nil {
		return nil, apperror.NotFound("posting not found", nil)
	}
	if posting.Status != model.PostingStatusActive {
		return nil, apperror.Conflict("this posting is not accepting applications", nil)
	}

	app := &model.Application{
		UserID:        session.UserID,
		PostingID:     req.PostingID,
		Status:        model.ApplicationStatusPending,
		AttachmentRef: req.AttachmentRef,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperror.Conflict("you have already applied to this posting", err)
		}
		return nil, storageErr(err, "posting not found")
	}
	return app, nil
}

// ListApplications returns the caller's own applications (scope own) or every
// application (scope all, admin only), with related records embedded.
func (s *applicationService) ListApplications(ctx context.Context, session *model.Session, scope string, status string) ([]model.Application, error) {
	filter := repository.Filter{}
	switch scope {
	case model.ScopeAll:
		if err := authorize(session, CapListAllApplications); err != nil {
			return nil, err
		}
	case model.ScopeOwn, "":
		if err := authorize(session, CapListOwnApplications); err != nil {
			return nil, err
		}
		filter["user_id"] = session.UserID
	default:
		return nil, apperror.Validation("scope must be own or all", nil)
	}
	if status != "" {
		if err := validateEnum("status", status, applicationStatuses); err != nil {
			return nil, err
		}
		filter["status"] = status
	}

	apps, err := s.repo.FindWithRelated(ctx, filter)
	if err != nil {
		return nil, storageErr(err, "application not found")
	}
	if apps == nil {
		apps = []model.Application{}
	}
	if !session.IsAdmin() {
		for i := range apps {
			apps[i].Notes = nil
			apps[i].Applicant = nil
		}
	}
	return apps, nil
}

// SetApplicationStatus moves a pending application to approved or rejected.
// Setting the status it already has succeeds without a write.
func (s *applicationService) SetApplicationStatus(ctx context.Context, session *model.Session, id int64, status string) (*model.Application, error) {
	if err := authorize(session, CapReviewApplications); err != nil {
		return nil, err
	}
	if status != model.ApplicationStatusApproved && status != model.ApplicationStatusRejected {
		return nil, apperror.Validation("status must be approved or rejected", nil)
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "application not found")
	}
	if app == nil {
		return nil, apperror.NotFound("application not found", nil)
	}
	if app.Status == status {
		return app, nil
	}
	if app.Status != model.ApplicationStatusPending {
		return nil, apperror.Conflict("application has already been "+app.Status, nil)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.ApplicationStatusPending, status)
	if errors.Is(err, repository.ErrConflict) {
		// Another reviewer got there first; re-read to decide.
		current, findErr := s.repo.FindByID(ctx, id)
		if findErr != nil {
			return nil, storageErr(findErr, "application not found")
		}
		if current == nil {
			return nil, apperror.NotFound("application not found", err)
		}
		if current.Status == status {
			return current, nil
		}
		return nil, apperror.Conflict("application has already been "+current.Status, err)
	}
	if err != nil {
		return nil, storageErr(err, "application not found")
	}
	log.Printf("INFO: application %d set to %s by user %d", id, status, session.UserID)
	return updated, nil
}

func (s *applicationService) UpdateApplicationNotes(ctx context.Context, session *model.Session, id int64, notes string) (*model.Application, error) {
	if err := authorize(session, CapEditApplicationNotes); err != nil {
		return nil, err
	}
	app, err := s.repo.Update(ctx, id, repository.ApplicationPatch{Notes: &notes})
	if err != nil {
		return nil, storageErr(err, "application not found")
	}
	return app, nil
}

func (s *applicationService) DeleteApplication(ctx context.Context, session *model.Session, id int64) error {
	if err := authorize(session, CapDeleteApplications); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageErr(err, "application not found")
	}
	log.Printf("INFO: application %d deleted by user %d", id, session.UserID)
	return nil
}

// ExportApplicationsCSV renders the admin application listing as CSV
func (s *applicationService) ExportApplicationsCSV(ctx context.Context, session *model.Session, status string) (*bytes.Buffer, error) {
	apps, err := s.ListApplications(ctx, session, model.ScopeAll, status)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	header := []string{"ID", "PostingID", "PostingTitle", "Company", "Applicant", "Email", "Status", "SubmittedAt", "AttachmentRef", "Notes"}
	if err := writer.Write(header); err != nil {
		return nil, apperror.Internal("failed to export applications", fmt.Errorf("failed to write CSV header: %w", err))
	}

	for _, a := range apps {
		var title, company, applicant, email, attachment, notes string
		if a.Posting != nil {
			title, company = a.Posting.Title, a.Posting.Company
		}
		if a.Applicant != nil {
			applicant = a.Applicant.Name + " " + a.Applicant.Surname
			email = a.Applicant.Email
		}
		if a.AttachmentRef != nil {
			attachment = *a.AttachmentRef
		}
		if a.Notes != nil {
			notes = *a.Notes
		}
		row := []string{
			strconv.FormatInt(a.ID, 10),
			strconv.FormatInt(a.PostingID, 10),
			title,
			company,
			applicant,
			email,
			a.Status,
			a.SubmittedAt.Format(time.RFC3339),
			attachment,
			notes,
		}
		if err := writer.Write(row); err != nil {
			return nil, apperror.Internal("failed to export applications", fmt.Errorf("failed to write CSV row: %w", err))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, apperror.Internal("failed to export applications", fmt.Errorf("error flushing CSV writer: %w", err))
	}
	return buffer, nil
}
