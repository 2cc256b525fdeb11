package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"internship_portal/internal/model"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, role, name, surname, national_id, phone, program, institution, created_at`

var userFilterColumns = map[string]string{
	"email":       "email",
	"role":        "role",
	"national_id": "national_id",
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Find(ctx context.Context, filter Filter) ([]model.User, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db      DB
	timeout time.Duration
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB, timeout time.Duration) UserRepository {
	return &userRepository{db: db, timeout: timeout}
}

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.Surname,
		&u.NationalID, &u.Phone, &u.Program, &u.Institution, &u.CreatedAt)
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sql := `INSERT INTO users (email, password_hash, role, name, surname, national_id, phone, program, institution)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, u.Email, u.PasswordHash, u.Role, u.Name, u.Surname,
		u.NationalID, u.Phone, u.Program, u.Institution).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return wrapErr("failed to create user", err)
	}
	return nil
}

// FindByID retrieves a user by ID; a missing user yields nil without error
func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail retrieves a user by e-mail; a missing user yields nil without error
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) findOne(ctx context.Context, sql string, arg any) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	user := &model.User{}
	if err := scanUser(r.db.QueryRow(ctx, sql, arg), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("failed to find user", err)
	}
	return user, nil
}

// Find lists users matching every filter entry
func (r *userRepository) Find(ctx context.Context, filter Filter) ([]model.User, error) {
	where, args, err := buildWhere(filter, userFilterColumns, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, wrapErr("failed to query users", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, wrapErr("failed to scan user row", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating user rows", err)
	}
	return users, nil
}

// Count returns how many users match the filter
func (r *userRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args, err := buildWhere(filter, userFilterColumns, 1)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&count); err != nil {
		return 0, wrapErr("failed to count users", err)
	}
	return count, nil
}

// Update merges the non-nil patch fields into the stored user
func (r *userRepository) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Surname != nil {
		set.add("surname", *patch.Surname)
	}
	if patch.ClearPhone {
		set.add("phone", nil)
	} else if patch.Phone != nil {
		set.add("phone", *patch.Phone)
	}
	if patch.Program != nil {
		set.add("program", *patch.Program)
	}
	if patch.Institution != nil {
		set.add("institution", *patch.Institution)
	}

	if set.empty() {
		user, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrNotFound
		}
		return user, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	args := append(set.args, id)
	sql := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, set.String(), len(args), userColumns)
	user := &model.User{}
	if err := scanUser(r.db.QueryRow(ctx, sql, args...), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapErr("failed to update user", err)
	}
	return user, nil
}

// Delete removes a user; used only by the admin bootstrap path
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapErr("failed to delete user", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
