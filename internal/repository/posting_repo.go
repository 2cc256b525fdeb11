package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"internship_portal/internal/model"

	"github.com/jackc/pgx/v5"
)

const postingColumns = `id, title, company, area, duration, modality, location, description, requirements, status, created_at`

var postingFilterColumns = map[string]string{
	"area":     "area",
	"modality": "modality",
	"location": "location",
	"status":   "status",
}

// PostingRepository defines operations for internship postings
type PostingRepository interface {
	Create(ctx context.Context, posting *model.Posting) error
	FindByID(ctx context.Context, id int64) (*model.Posting, error)
	Find(ctx context.Context, filter Filter) ([]model.Posting, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, id int64, patch model.UpdatePostingRequest) (*model.Posting, error)
	Delete(ctx context.Context, id int64) error
}

type postingRepository struct {
	db      DB
	timeout time.Duration
}

// NewPostingRepository creates a new PostingRepository
func NewPostingRepository(db DB, timeout time.Duration) PostingRepository {
	return &postingRepository{db: db, timeout: timeout}
}

func scanPosting(row pgx.Row, p *model.Posting) error {
	return row.Scan(&p.ID, &p.Title, &p.Company, &p.Area, &p.Duration, &p.Modality,
		&p.Location, &p.Description, &p.Requirements, &p.Status, &p.CreatedAt)
}

// Create inserts a new posting
func (r *postingRepository) Create(ctx context.Context, p *model.Posting) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sql := `INSERT INTO postings (title, company, area, duration, modality, location, description, requirements, status)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, p.Title, p.Company, p.Area, p.Duration, p.Modality,
		p.Location, p.Description, p.Requirements, p.Status).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return wrapErr("failed to create posting", err)
	}
	return nil
}

// FindByID retrieves a posting; a missing posting yields nil without error
func (r *postingRepository) FindByID(ctx context.Context, id int64) (*model.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	p := &model.Posting{}
	if err := scanPosting(r.db.QueryRow(ctx, `SELECT `+postingColumns+` FROM postings WHERE id = $1`, id), p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("failed to find posting by ID", err)
	}
	return p, nil
}

// Find lists postings matching every filter entry, newest first
func (r *postingRepository) Find(ctx context.Context, filter Filter) ([]model.Posting, error) {
	where, args, err := buildWhere(filter, postingFilterColumns, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+postingColumns+` FROM postings`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, wrapErr("failed to query postings", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		var p model.Posting
		if err := scanPosting(rows, &p); err != nil {
			return nil, wrapErr("failed to scan posting row", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating posting rows", err)
	}
	return postings, nil
}

// Count returns how many postings match the filter
func (r *postingRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args, err := buildWhere(filter, postingFilterColumns, 1)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM postings`+where, args...).Scan(&count); err != nil {
		return 0, wrapErr("failed to count postings", err)
	}
	return count, nil
}

// Update merges the non-nil patch fields into the stored posting
func (r *postingRepository) Update(ctx context.Context, id int64, patch model.UpdatePostingRequest) (*model.Posting, error) {
	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Company != nil {
		set.add("company", *patch.Company)
	}
	if patch.Area != nil {
		set.add("area", *patch.Area)
	}
	if patch.Duration != nil {
		set.add("duration", *patch.Duration)
	}
	if patch.Modality != nil {
		set.add("modality", *patch.Modality)
	}
	if patch.Location != nil {
		set.add("location", *patch.Location)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Requirements != nil {
		set.add("requirements", *patch.Requirements)
	}
	if patch.Status != nil {
		set.add("status", *patch.Status)
	}

	if set.empty() {
		p, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrNotFound
		}
		return p, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	args := append(set.args, id)
	sql := fmt.Sprintf(`UPDATE postings SET %s WHERE id = $%d RETURNING %s`, set.String(), len(args), postingColumns)
	p := &model.Posting{}
	if err := scanPosting(r.db.QueryRow(ctx, sql, args...), p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapErr("failed to update posting", err)
	}
	return p, nil
}

// Delete removes a posting; its applications go with it (ON DELETE CASCADE)
func (r *postingRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM postings WHERE id = $1`, id)
	if err != nil {
		return wrapErr("failed to delete posting", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
