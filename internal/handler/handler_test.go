package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"internship_portal/internal/apperror"
	"internship_portal/internal/middleware"
	"internship_portal/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	studentSession = &model.Session{ID: "s-student", UserID: 1, Email: "a@x.com", Role: model.RoleStudent}
	adminSession   = &model.Session{ID: "s-admin", UserID: 2, Email: "admin@x.com", Role: model.RoleAdmin}
)

type stubAuth struct {
	registered model.RegisterRequest
	loggedOut  *model.Session
	loginErr   error
}

func (s *stubAuth) Register(_ context.Context, req model.RegisterRequest) (*model.User, error) {
	if req.Email == "taken@x.com" {
		return nil, apperror.Conflict("this email is already registered", nil)
	}
	s.registered = req
	return &model.User{ID: 7, Email: req.Email, Role: model.RoleStudent, PasswordHash: "hash"}, nil
}

func (s *stubAuth) Login(_ context.Context, email, _ string) (*model.Session, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return &model.Session{ID: "new", UserID: 7, Email: email, Role: model.RoleStudent, ExpiresAt: time.Now().Add(time.Hour)}, "signed-token", nil
}

func (s *stubAuth) Logout(_ context.Context, session *model.Session) error {
	s.loggedOut = session
	return nil
}

func (s *stubAuth) ResolveToken(_ context.Context, token string) (*model.Session, error) {
	switch token {
	case "student-token":
		return studentSession, nil
	case "admin-token":
		return adminSession, nil
	}
	return nil, apperror.InvalidCredential("invalid or expired session", nil)
}

func (s *stubAuth) BootstrapAdmin(context.Context, model.RegisterRequest) (*model.User, error) {
	return nil, errors.New("not used")
}

type stubPostings struct {
	filters model.PostingFilters
}

func (s *stubPostings) CreatePosting(_ context.Context, _ *model.Session, req model.CreatePostingRequest) (*model.Posting, error) {
	return &model.Posting{ID: 10, Title: req.Title, Status: model.PostingStatusActive}, nil
}

func (s *stubPostings) ListPostings(_ context.Context, filters model.PostingFilters) ([]model.Posting, error) {
	s.filters = filters
	return []model.Posting{{ID: 10, Title: "Backend Intern", Modality: filters.Modality}}, nil
}

func (s *stubPostings) GetPosting(_ context.Context, id int64) (*model.Posting, error) {
	if id != 10 {
		return nil, apperror.NotFound("posting not found", nil)
	}
	return &model.Posting{ID: 10}, nil
}

func (s *stubPostings) UpdatePosting(_ context.Context, _ *model.Session, id int64, _ model.UpdatePostingRequest) (*model.Posting, error) {
	return &model.Posting{ID: id}, nil
}

func (s *stubPostings) DeletePosting(context.Context, *model.Session, int64) error {
	return nil
}

type stubApplications struct {
	lastScope  string
	lastStatus string
	deleteErr  error
}

func (s *stubApplications) Apply(_ context.Context, session *model.Session, req model.ApplyRequest) (*model.Application, error) {
	return &model.Application{ID: 3, UserID: session.UserID, PostingID: req.PostingID, Status: model.ApplicationStatusPending}, nil
}

func (s *stubApplications) ListApplications(_ context.Context, _ *model.Session, scope, status string) ([]model.Application, error) {
	s.lastScope, s.lastStatus = scope, status
	return []model.Application{}, nil
}

func (s *stubApplications) SetApplicationStatus(_ context.Context, _ *model.Session, id int64, status string) (*model.Application, error) {
	return &model.Application{ID: id, Status: status}, nil
}

func (s *stubApplications) UpdateApplicationNotes(_ context.Context, _ *model.Session, id int64, notes string) (*model.Application, error) {
	return &model.Application{ID: id, Notes: &notes}, nil
}

func (s *stubApplications) DeleteApplication(context.Context, *model.Session, int64) error {
	return s.deleteErr
}

func (s *stubApplications) ExportApplicationsCSV(context.Context, *model.Session, string) (*bytes.Buffer, error) {
	return bytes.NewBufferString("ID,Status\n3,pending\n"), nil
}

type stubUsers struct{}

func (stubUsers) GetProfile(_ context.Context, session *model.Session) (*model.User, error) {
	return &model.User{ID: session.UserID, Email: session.Email, PasswordHash: "hash"}, nil
}

func (stubUsers) UpdateProfile(_ context.Context, _ *model.Session, req model.UpdateProfileRequest) (*model.User, error) {
	if req.Email != nil {
		return nil, apperror.Validation("email, national_id and role cannot be changed", nil)
	}
	return &model.User{ID: 1, Name: *req.Name}, nil
}

func (stubUsers) ListUsers(context.Context, *model.Session) ([]model.UserSummary, error) {
	return []model.UserSummary{{ID: 1}, {ID: 2}}, nil
}

type stubStats struct{}

func (stubStats) GetStats(context.Context, *model.Session) (*model.Stats, error) {
	return nil, apperror.Timeout("the storage service did not respond in time", context.DeadlineExceeded)
}

type testServer struct {
	router       *gin.Engine
	auth         *stubAuth
	postings     *stubPostings
	applications *stubApplications
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	ts := &testServer{
		router:       gin.New(),
		auth:         &stubAuth{},
		postings:     &stubPostings{},
		applications: &stubApplications{},
	}

	sessionMW := middleware.SessionMiddleware(ts.auth)
	adminMW := middleware.AdminMiddleware()
	studentMW := middleware.StudentMiddleware()
	limitMW := middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(100))

	api := ts.router.Group("/api/v1")
	NewAuthHandler(ts.auth).RegisterAuthRoutes(api, sessionMW, limitMW)
	NewPostingHandler(ts.postings).RegisterPostingRoutes(api, sessionMW, adminMW)
	NewApplicationHandler(ts.applications).RegisterApplicationRoutes(api, sessionMW, studentMW, adminMW)
	NewUserHandler(stubUsers{}).RegisterUserRoutes(api, sessionMW)
	NewAdminHandler(stubUsers{}, stubStats{}).RegisterAdminRoutes(api, sessionMW, adminMW)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
