package service

import (
	"context"
	"strings"

	"internship_portal/internal/apperror"
	"internship_portal/internal/model"
	"internship_portal/internal/repository"
)

// UserService defines profile operations and the admin user listing
type UserService interface {
	GetProfile(ctx context.Context, session *model.Session) (*model.User, error)
	UpdateProfile(ctx context.Context, session *model.Session, req model.UpdateProfileRequest) (*model.User, error)
	ListUsers(ctx context.Context, session *model.Session) ([]model.UserSummary, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetProfile(ctx context.Context, session *model.Session) (*model.User, error) {
	if err := authorize(session, CapEditOwnProfile); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, storageErr(err, "user not found")
	}
	if user == nil {
		return nil, apperror.NotFound("user not found", nil)
	}
	return user, nil
}

// UpdateProfile changes the caller's own mutable profile fields
func (s *userService) UpdateProfile(ctx context.Context, session *model.Session, req model.UpdateProfileRequest) (*model.User, error) {
	if err := authorize(session, CapEditOwnProfile); err != nil {
		return nil, err
	}
	if req.Email != nil || req.NationalID != nil || req.Role != nil {
		return nil, apperror.Validation("email, national_id and role cannot be changed", nil)
	}

	var patch model.UserPatch
	if req.Phone != nil {
		patch.Phone = normalizePhone(req.Phone)
		patch.ClearPhone = patch.Phone == nil
	}
	required := []struct {
		name  string
		value *string
		dst   **string
	}{
		{"name", req.Name, &patch.Name},
		{"surname", req.Surname, &patch.Surname},
		{"program", req.Program, &patch.Program},
		{"institution", req.Institution, &patch.Institution},
	}
	for _, f := range required {
		if f.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*f.value)
		if trimmed == "" {
			return nil, apperror.Validation(f.name+" cannot be empty", nil)
		}
		*f.dst = &trimmed
	}

	user, err := s.repo.Update(ctx, session.UserID, patch)
	if err != nil {
		return nil, storageErr(err, "user not found")
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, session *model.Session) ([]model.UserSummary, error) {
	if err := authorize(session, CapListUsers); err != nil {
		return nil, err
	}
	users, err := s.repo.Find(ctx, nil)
	if err != nil {
		return nil, storageErr(err, "user not found")
	}
	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}
