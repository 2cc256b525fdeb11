package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"internship_portal/internal/apperror"
	"internship_portal/internal/model"
	"internship_portal/internal/repository"
	"internship_portal/internal/utils"

	"github.com/google/uuid"
)

// AuthService provides registration, login and session resolution
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.Session, string, error)
	Logout(ctx context.Context, session *model.Session) error
	ResolveToken(ctx context.Context, token string) (*model.Session, error)
	BootstrapAdmin(ctx context.Context, req model.RegisterRequest) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtUtil     *utils.JWTUtil
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, jwtUtil *utils.JWTUtil) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtUtil:     jwtUtil,
	}
}

func normalizeRegistration(req *model.RegisterRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Surname = strings.TrimSpace(req.Surname)
	req.NationalID = strings.TrimSpace(req.NationalID)
	req.Program = strings.TrimSpace(req.Program)
	req.Institution = strings.TrimSpace(req.Institution)
	req.Phone = normalizePhone(req.Phone)

	var missing []string
	for field, value := range map[string]string{
		"email": req.Email, "password": req.Password, "name": req.Name, "surname": req.Surname,
		"national_id": req.NationalID, "program": req.Program, "institution": req.Institution,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return apperror.Validation("missing required fields: "+strings.Join(missing, ", "), nil)
	}
	if !strings.Contains(req.Email, "@") {
		return apperror.Validation("email is not valid", nil)
	}
	return nil
}

// normalizePhone trims the number; a blank number means no phone
func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Register creates a student account
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := normalizeRegistration(&req); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, req.Email, req.NationalID); err != nil {
		return nil, err
	}
	return s.createUser(ctx, req, model.RoleStudent)
}

// checkUnique gives a precise message for the common case; the unique
// constraints still decide when two registrations race.
func (s *authService) checkUnique(ctx context.Context, email, nationalID string) error {
	count, err := s.userRepo.Count(ctx, repository.Filter{"email": email})
	if err != nil {
		return storageErr(err, "user not found")
	}
	if count > 0 {
		return apperror.Conflict("this email is already registered", nil)
	}
	count, err = s.userRepo.Count(ctx, repository.Filter{"national_id": nationalID})
	if err != nil {
		return storageErr(err, "user not found")
	}
	if count > 0 {
		return apperror.Conflict("this national ID is already registered", nil)
	}
	return nil
}

func (s *authService) createUser(ctx context.Context, req model.RegisterRequest, role string) (*model.User, error) {
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("failed to register user", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		Name:         req.Name,
		Surname:      req.Surname,
		NationalID:   req.NationalID,
		Phone:        req.Phone,
		Program:      req.Program,
		Institution:  req.Institution,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperror.Conflict(conflictMessage(repository.ConstraintName(err)), err)
		}
		return nil, storageErr(err, "user not found")
	}
	return user, nil
}

func conflictMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "email"):
		return "this email is already registered"
	case strings.Contains(constraint, "national_id"):
		return "this national ID is already registered"
	default:
		return "this user is already registered"
	}
}

// Login checks credentials and opens a server-tracked session.
// Unknown e-mails and wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*model.Session, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apperror.Validation("email and password are required", nil)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", storageErr(err, "user not found")
	}
	if user == nil {
		log.Printf("INFO: login attempt for unknown email %s", email)
		return nil, "", apperror.InvalidCredential("invalid email or password", ErrUserNotFound)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", apperror.InvalidCredential("invalid email or password", ErrWrongPassword)
	}

	now := time.Now()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.jwtUtil.Expiration()),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, "", storageErr(err, "session not found")
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, session.ID)
	if err != nil {
		_ = s.sessionRepo.Delete(ctx, session.ID)
		return nil, "", apperror.Internal("failed to login", err)
	}
	return session, token, nil
}

// Logout drops the server-side session
func (s *authService) Logout(ctx context.Context, session *model.Session) error {
	if session == nil {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		return storageErr(err, "session not found")
	}
	return nil
}

// ResolveToken validates a bearer token and loads the session it points at.
// The role always comes from the stored session, never from the token.
func (s *authService) ResolveToken(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		return nil, apperror.InvalidCredential("invalid or expired session", err)
	}

	session, err := s.sessionRepo.Get(ctx, claims.SessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.InvalidCredential("invalid or expired session", ErrSessionNotFound)
	}
	if err != nil {
		return nil, storageErr(err, "session not found")
	}
	if session.UserID != claims.UserID {
		return nil, apperror.InvalidCredential("invalid or expired session", fmt.Errorf("session %s belongs to user %d", session.ID, session.UserID))
	}
	return session, nil
}

// BootstrapAdmin (re)creates the admin account: any user holding the e-mail
// is removed together with its sessions, then an admin is inserted.
func (s *authService) BootstrapAdmin(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := normalizeRegistration(&req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, storageErr(err, "user not found")
	}

	// Refuse before deleting anything: another holder of the national ID would fail the insert.
	holders, err := s.userRepo.Find(ctx, repository.Filter{"national_id": req.NationalID})
	if err != nil {
		return nil, storageErr(err, "user not found")
	}
	for _, holder := range holders {
		if existing == nil || holder.ID != existing.ID {
			return nil, apperror.Conflict("this national ID is already registered", nil)
		}
	}

	if existing != nil {
		log.Printf("INFO: removing existing account %s (ID: %d) before admin bootstrap", existing.Email, existing.ID)
		if err := s.sessionRepo.DeleteByUser(ctx, existing.ID); err != nil {
			return nil, storageErr(err, "session not found")
		}
		if err := s.userRepo.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, storageErr(err, "user not found")
		}
	}

	user, err := s.createUser(ctx, req, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: admin account %s created (ID: %d)", user.Email, user.ID)
	return user, nil
}
