package service

import (
	"context"
	"slices"
	"strings"

	"internship_portal/internal/apperror"
	"internship_portal/internal/model"
	"internship_portal/internal/repository"
)

var modalities = []string{model.ModalityOnSite, model.ModalityRemote, model.ModalityHybrid}

var postingStatuses = []string{model.PostingStatusActive, model.PostingStatusClosed}

// PostingService defines operations for internship postings
type PostingService interface {
	CreatePosting(ctx context.Context, session *model.Session, req model.CreatePostingRequest) (*model.Posting, error)
	ListPostings(ctx context.Context, filters model.PostingFilters) ([]model.Posting, error)
	GetPosting(ctx context.Context, id int64) (*model.Posting, error)
	UpdatePosting(ctx context.Context, session *model.Session, id int64, req model.UpdatePostingRequest) (*model.Posting, error)
	DeletePosting(ctx context.Context, session *model.Session, id int64) error
}

type postingService struct {
	repo repository.PostingRepository
}

// NewPostingService creates a new PostingService
func NewPostingService(repo repository.PostingRepository) PostingService {
	return &postingService{repo: repo}
}

func validateEnum(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return apperror.Validation(field+" must be one of: "+strings.Join(allowed, ", "), nil)
	}
	return nil
}

func (s *postingService) CreatePosting(ctx context.Context, session *model.Session, req model.CreatePostingRequest) (*model.Posting, error) {
	if err := authorize(session, CapManagePostings); err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", req.Title}, {"company", req.Company}, {"area", req.Area},
		{"duration", req.Duration}, {"modality", req.Modality}, {"location", req.Location},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.Validation("missing required fields: "+strings.Join(missing, ", "), nil)
	}
	if err := validateEnum("area", req.Area, model.Areas); err != nil {
		return nil, err
	}
	if err := validateEnum("modality", req.Modality, modalities); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.PostingStatusActive
	}
	if err := validateEnum("status", status, postingStatuses); err != nil {
		return nil, err
	}

	posting := &model.Posting{
		Title:        strings.TrimSpace(req.Title),
		Company:      strings.TrimSpace(req.Company),
		Area:         req.Area,
		Duration:     strings.TrimSpace(req.Duration),
		Modality:     req.Modality,
		Location:     strings.TrimSpace(req.Location),
		Description:  req.Description,
		Requirements: req.Requirements,
		Status:       status,
	}
	if err := s.repo.Create(ctx, posting); err != nil {
		return nil, storageErr(err, "posting not found")
	}
	return posting, nil
}

// ListPostings is public. Without a status filter only active postings are returned.
func (s *postingService) ListPostings(ctx context.Context, filters model.PostingFilters) ([]model.Posting, error) {
	filter := repository.Filter{"status": model.PostingStatusActive}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.Area != "" {
		filter["area"] = filters.Area
	}
	if filters.Modality != "" {
		filter["modality"] = filters.Modality
	}
	if filters.Location != "" {
		filter["location"] = filters.Location
	}

	postings, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, storageErr(err, "posting not found")
	}
	if postings == nil {
		postings = []model.Posting{}
	}
	return postings, nil
}

func (s *postingService) GetPosting(ctx context.Context, id int64) (*model.Posting, error) {
	posting, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "posting not found")
	}
	if posting == nil {
		return nil, apperror.NotFound("posting not found", nil)
	}
	return posting, nil
}

func (s *postingService) UpdatePosting(ctx context.Context, session *model.Session, id int64, req model.UpdatePostingRequest) (*model.Posting, error) {
	if err := authorize(session, CapManagePostings); err != nil {
		return nil, err
	}
	if req.Area != nil {
		if err := validateEnum("area", *req.Area, model.Areas); err != nil {
			return nil, err
		}
	}
	if req.Modality != nil {
		if err := validateEnum("modality", *req.Modality, modalities); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := validateEnum("status", *req.Status, postingStatuses); err != nil {
			return nil, err
		}
	}
	for name, value := range map[string]*string{"title": req.Title, "company": req.Company, "duration": req.Duration, "location": req.Location} {
		if value != nil && strings.TrimSpace(*value) == "" {
			return nil, apperror.Validation(name+" cannot be empty", nil)
		}
	}

	posting, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, storageErr(err, "posting not found")
	}
	return posting, nil
}

func (s *postingService) DeletePosting(ctx context.Context, session *model.Session, id int64) error {
	if err := authorize(session, CapManagePostings); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageErr(err, "posting not found")
	}
	return nil
}
