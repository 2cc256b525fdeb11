package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"internship_portal/internal/model"
	"internship_portal/internal/repository"
	"internship_portal/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// memDB is an in-memory stand-in for the three tables, enforcing the same
// unique and foreign-key constraints as the SQL schema.
type memDB struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]model.User
	postings     map[int64]model.Posting
	applications map[int64]model.Application
	calls        int
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[int64]model.User{},
		postings:     map[int64]model.Posting{},
		applications: map[int64]model.Application{},
	}
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memDB) touch() {
	m.calls++
}

func (m *memDB) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func matches(fields map[string]any, filter repository.Filter) (bool, error) {
	for key, want := range filter {
		got, ok := fields[key]
		if !ok {
			return false, fmt.Errorf("%w: %s", repository.ErrUnknownField, key)
		}
		if got != want {
			return false, nil
		}
	}
	return true, nil
}

func userFields(u model.User) map[string]any {
	return map[string]any{"email": u.Email, "role": u.Role, "national_id": u.NationalID}
}

func postingFields(p model.Posting) map[string]any {
	return map[string]any{"area": p.Area, "modality": p.Modality, "location": p.Location, "status": p.Status}
}

func applicationFields(a model.Application) map[string]any {
	return map[string]any{"user_id": a.UserID, "posting_id": a.PostingID, "status": a.Status}
}

type fakeUserRepo struct{ db *memDB }

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	for _, existing := range r.db.users {
		if existing.Email == u.Email || existing.NationalID == u.NationalID {
			return fmt.Errorf("failed to create user: %w", repository.ErrConflict)
		}
	}
	u.ID = r.db.id()
	u.CreatedAt = time.Now()
	r.db.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Find(_ context.Context, filter repository.Filter) ([]model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	var out []model.User
	for _, u := range r.db.users {
		ok, err := matches(userFields(u), filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	users, err := r.Find(ctx, filter)
	return int64(len(users)), err
}

func (r *fakeUserRepo) Update(_ context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Surname != nil {
		u.Surname = *patch.Surname
	}
	if patch.ClearPhone {
		u.Phone = nil
	} else if patch.Phone != nil {
		phone := *patch.Phone
		u.Phone = &phone
	}
	if patch.Program != nil {
		u.Program = *patch.Program
	}
	if patch.Institution != nil {
		u.Institution = *patch.Institution
	}
	r.db.users[id] = u
	return &u, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	if _, ok := r.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.users, id)
	return nil
}

type fakePostingRepo struct{ db *memDB }

func (r *fakePostingRepo) Create(_ context.Context, p *model.Posting) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	p.ID = r.db.id()
	p.CreatedAt = time.Now()
	r.db.postings[p.ID] = *p
	return nil
}

func (r *fakePostingRepo) FindByID(_ context.Context, id int64) (*model.Posting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	p, ok := r.db.postings[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePostingRepo) Find(_ context.Context, filter repository.Filter) ([]model.Posting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	var out []model.Posting
	for _, p := range r.db.postings {
		ok, err := matches(postingFields(p), filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePostingRepo) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	postings, err := r.Find(ctx, filter)
	return int64(len(postings)), err
}

func (r *fakePostingRepo) Update(_ context.Context, id int64, patch model.UpdatePostingRequest) (*model.Posting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	p, ok := r.db.postings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Title, patch.Title)
	set(&p.Company, patch.Company)
	set(&p.Area, patch.Area)
	set(&p.Duration, patch.Duration)
	set(&p.Modality, patch.Modality)
	set(&p.Location, patch.Location)
	set(&p.Description, patch.Description)
	set(&p.Requirements, patch.Requirements)
	set(&p.Status, patch.Status)
	r.db.postings[id] = p
	return &p, nil
}

func (r *fakePostingRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	if _, ok := r.db.postings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.postings, id)
	for appID, a := range r.db.applications {
		if a.PostingID == id {
			delete(r.db.applications, appID)
		}
	}
	return nil
}

type fakeApplicationRepo struct{ db *memDB }

func (r *fakeApplicationRepo) Create(_ context.Context, a *model.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	if _, ok := r.db.postings[a.PostingID]; !ok {
		return fmt.Errorf("failed to create application: %w", repository.ErrNotFound)
	}
	for _, existing := range r.db.applications {
		if existing.UserID == a.UserID && existing.PostingID == a.PostingID {
			return fmt.Errorf("failed to create application: %w", repository.ErrConflict)
		}
	}
	a.ID = r.db.id()
	a.SubmittedAt = time.Now()
	r.db.applications[a.ID] = *a
	return nil
}

func (r *fakeApplicationRepo) FindByID(_ context.Context, id int64) (*model.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	a, ok := r.db.applications[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeApplicationRepo) Find(_ context.Context, filter repository.Filter) ([]model.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	var out []model.Application
	for _, a := range r.db.applications {
		ok, err := matches(applicationFields(a), filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeApplicationRepo) FindWithRelated(ctx context.Context, filter repository.Filter) ([]model.Application, error) {
	apps, err := r.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range apps {
		p := r.db.postings[apps[i].PostingID]
		u := r.db.users[apps[i].UserID]
		apps[i].Posting = &p
		apps[i].Applicant = &model.ApplicantBrief{Name: u.Name, Surname: u.Surname, Email: u.Email}
	}
	return apps, nil
}

func (r *fakeApplicationRepo) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	apps, err := r.Find(ctx, filter)
	return int64(len(apps)), err
}

func (r *fakeApplicationRepo) Update(_ context.Context, id int64, patch repository.ApplicationPatch) (*model.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	a, ok := r.db.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Notes != nil {
		notes := *patch.Notes
		a.Notes = &notes
	}
	if patch.AttachmentRef != nil {
		ref := *patch.AttachmentRef
		a.AttachmentRef = &ref
	}
	r.db.applications[id] = a
	return &a, nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, id int64, from, to string) (*model.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	a, ok := r.db.applications[id]
	if !ok || a.Status != from {
		return nil, repository.ErrConflict
	}
	a.Status = to
	r.db.applications[id] = a
	return &a, nil
}

func (r *fakeApplicationRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.touch()
	if _, ok := r.db.applications[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.applications, id)
	return nil
}

type testEnv struct {
	db           *memDB
	redis        *miniredis.Miniredis
	auth         AuthService
	postings     PostingService
	applications ApplicationService
	users        UserService
	stats        StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db := newMemDB()
	userRepo := &fakeUserRepo{db: db}
	postingRepo := &fakePostingRepo{db: db}
	applicationRepo := &fakeApplicationRepo{db: db}
	sessionRepo := repository.NewSessionRepository(client, time.Second)

	return &testEnv{
		db:           db,
		redis:        mr,
		auth:         NewAuthService(userRepo, sessionRepo, utils.NewJWTUtil("test-secret", time.Hour)),
		postings:     NewPostingService(postingRepo),
		applications: NewApplicationService(applicationRepo, postingRepo),
		users:        NewUserService(userRepo),
		stats:        NewStatsService(postingRepo, applicationRepo),
	}
}

func registration(email, nationalID string) model.RegisterRequest {
	return model.RegisterRequest{
		Email:       email,
		Password:    "secret123",
		Name:        "Ana",
		Surname:     "Diaz",
		NationalID:  nationalID,
		Program:     "Systems Engineering",
		Institution: "National University",
	}
}

// login registers (or bootstraps) an account and returns its live session
func (e *testEnv) login(t *testing.T, email, nationalID string, admin bool) *model.Session {
	t.Helper()
	ctx := context.Background()
	var err error
	if admin {
		_, err = e.auth.BootstrapAdmin(ctx, registration(email, nationalID))
	} else {
		_, err = e.auth.Register(ctx, registration(email, nationalID))
	}
	require.NoError(t, err)

	session, _, err := e.auth.Login(ctx, email, "secret123")
	require.NoError(t, err)
	return session
}

func (e *testEnv) createPosting(t *testing.T, admin *model.Session, title, modality string) *model.Posting {
	t.Helper()
	p, err := e.postings.CreatePosting(context.Background(), admin, model.CreatePostingRequest{
		Title: title, Company: "Acme", Area: "technology", Duration: "6 months",
		Modality: modality, Location: "Lima",
	})
	require.NoError(t, err)
	return p
}
