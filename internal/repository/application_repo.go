package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"internship_portal/internal/model"

	"github.com/jackc/pgx/v5"
)

const applicationColumns = `a.id, a.user_id, a.posting_id, a.status, a.submitted_at, a.attachment_ref, a.notes`

var applicationFilterColumns = map[string]string{
	"user_id":    "a.user_id",
	"posting_id": "a.posting_id",
	"status":     "a.status",
}

// ApplicationPatch lists the application columns a partial update may touch.
// Status is changed only through UpdateStatus.
type ApplicationPatch struct {
	Notes         *string
	AttachmentRef *string
}

// ApplicationRepository defines operations for applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id int64) (*model.Application, error)
	Find(ctx context.Context, filter Filter) ([]model.Application, error)
	FindWithRelated(ctx context.Context, filter Filter) ([]model.Application, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, id int64, patch ApplicationPatch) (*model.Application, error)
	UpdateStatus(ctx context.Context, id int64, from, to string) (*model.Application, error)
	Delete(ctx context.Context, id int64) error
}

type applicationRepository struct {
	db      DB
	timeout time.Duration
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db DB, timeout time.Duration) ApplicationRepository {
	return &applicationRepository{db: db, timeout: timeout}
}

func scanApplication(row pgx.Row, a *model.Application) error {
	return row.Scan(&a.ID, &a.UserID, &a.PostingID, &a.Status, &a.SubmittedAt, &a.AttachmentRef, &a.Notes)
}

// Create inserts a pending application. The (user_id, posting_id) unique
// constraint turns a repeated submission into ErrConflict.
func (r *applicationRepository) Create(ctx context.Context, a *model.Application) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sql := `INSERT INTO applications (user_id, posting_id, status, attachment_ref)
            VALUES ($1, $2, $3, $4) RETURNING id, submitted_at`
	err := r.db.QueryRow(ctx, sql, a.UserID, a.PostingID, a.Status, a.AttachmentRef).Scan(&a.ID, &a.SubmittedAt)
	if err != nil {
		return wrapErr("failed to create application", err)
	}
	return nil
}

// FindByID retrieves an application; a missing one yields nil without error
func (r *applicationRepository) FindByID(ctx context.Context, id int64) (*model.Application, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	a := &model.Application{}
	err := scanApplication(r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.id = $1`, id), a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("failed to find application by ID", err)
	}
	return a, nil
}

// Find lists applications matching every filter entry, newest first
func (r *applicationRepository) Find(ctx context.Context, filter Filter) ([]model.Application, error) {
	where, args, err := buildWhere(filter, applicationFilterColumns, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+applicationColumns+` FROM applications a`+where+` ORDER BY a.submitted_at DESC, a.id DESC`, args...)
	if err != nil {
		return nil, wrapErr("failed to query applications", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var a model.Application
		if err := scanApplication(rows, &a); err != nil {
			return nil, wrapErr("failed to scan application row", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating application rows", err)
	}
	return apps, nil
}

// FindWithRelated is Find with the referenced posting and applicant embedded
func (r *applicationRepository) FindWithRelated(ctx context.Context, filter Filter) ([]model.Application, error) {
	where, args, err := buildWhere(filter, applicationFilterColumns, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sql := `SELECT ` + applicationColumns + `,
                   p.id, p.title, p.company, p.area, p.duration, p.modality, p.location, p.description, p.requirements, p.status, p.created_at,
                   u.name, u.surname, u.email
            FROM applications a
            JOIN postings p ON p.id = a.posting_id
            JOIN users u ON u.id = a.user_id` + where + ` ORDER BY a.submitted_at DESC, a.id DESC`
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr("failed to query applications with related records", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var a model.Application
		p := &model.Posting{}
		u := &model.ApplicantBrief{}
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.PostingID, &a.Status, &a.SubmittedAt, &a.AttachmentRef, &a.Notes,
			&p.ID, &p.Title, &p.Company, &p.Area, &p.Duration, &p.Modality, &p.Location,
			&p.Description, &p.Requirements, &p.Status, &p.CreatedAt,
			&u.Name, &u.Surname, &u.Email,
		); err != nil {
			return nil, wrapErr("failed to scan joined application row", err)
		}
		a.Posting = p
		a.Applicant = u
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating joined application rows", err)
	}
	return apps, nil
}

// Count returns how many applications match the filter
func (r *applicationRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args, err := buildWhere(filter, applicationFilterColumns, 1)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications a`+where, args...).Scan(&count); err != nil {
		return 0, wrapErr("failed to count applications", err)
	}
	return count, nil
}

// Update merges the non-nil patch fields into the stored application
func (r *applicationRepository) Update(ctx context.Context, id int64, patch ApplicationPatch) (*model.Application, error) {
	var set setClause
	if patch.Notes != nil {
		set.add("notes", *patch.Notes)
	}
	if patch.AttachmentRef != nil {
		set.add("attachment_ref", *patch.AttachmentRef)
	}

	if set.empty() {
		a, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, ErrNotFound
		}
		return a, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	args := append(set.args, id)
	sql := fmt.Sprintf(`UPDATE applications a SET %s WHERE a.id = $%d RETURNING %s`, set.String(), len(args), applicationColumns)
	a := &model.Application{}
	if err := scanApplication(r.db.QueryRow(ctx, sql, args...), a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapErr("failed to update application", err)
	}
	return a, nil
}

// UpdateStatus moves an application from one status to another only if it
// still holds the expected status. No matching row yields ErrConflict.
func (r *applicationRepository) UpdateStatus(ctx context.Context, id int64, from, to string) (*model.Application, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sql := `UPDATE applications a SET status = $1 WHERE a.id = $2 AND a.status = $3 RETURNING ` + applicationColumns
	a := &model.Application{}
	if err := scanApplication(r.db.QueryRow(ctx, sql, to, id, from), a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("application %d is no longer %s: %w", id, from, ErrConflict)
		}
		return nil, wrapErr("failed to update application status", err)
	}
	return a, nil
}

// Delete removes an application
func (r *applicationRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return wrapErr("failed to delete application", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
