package service

import (
	"context"

	"internship_portal/internal/model"
	"internship_portal/internal/repository"
)

// StatsService computes the admin dashboard counters
type StatsService interface {
	GetStats(ctx context.Context, session *model.Session) (*model.Stats, error)
}

type statsService struct {
	postingRepo     repository.PostingRepository
	applicationRepo repository.ApplicationRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(postingRepo repository.PostingRepository, applicationRepo repository.ApplicationRepository) StatsService {
	return &statsService{postingRepo: postingRepo, applicationRepo: applicationRepo}
}

func (s *statsService) GetStats(ctx context.Context, session *model.Session) (*model.Stats, error) {
	if err := authorize(session, CapViewStats); err != nil {
		return nil, err
	}

	stats := &model.Stats{}
	var err error
	if stats.TotalPostings, err = s.postingRepo.Count(ctx, nil); err != nil {
		return nil, storageErr(err, "posting not found")
	}
	if stats.TotalApplications, err = s.applicationRepo.Count(ctx, nil); err != nil {
		return nil, storageErr(err, "application not found")
	}
	if stats.PendingApplications, err = s.applicationRepo.Count(ctx, repository.Filter{"status": model.ApplicationStatusPending}); err != nil {
		return nil, storageErr(err, "application not found")
	}
	return stats, nil
}
