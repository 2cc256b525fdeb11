package model

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a portal account
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	NationalID   string    `json:"national_id"`
	Phone        *string   `json:"phone,omitempty"`
	Program      string    `json:"program"`
	Institution  string    `json:"institution"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest carries the fields a student supplies at sign-up
type RegisterRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=6"`
	Name        string  `json:"name" binding:"required"`
	Surname     string  `json:"surname" binding:"required"`
	NationalID  string  `json:"national_id" binding:"required"`
	Phone       *string `json:"phone"`
	Program     string  `json:"program" binding:"required"`
	Institution string  `json:"institution" binding:"required"`
}

// UpdateProfileRequest is a partial update of the caller's own profile.
// Email, NationalID and Role are accepted only so they can be rejected explicitly.
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	Surname     *string `json:"surname,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Program     *string `json:"program,omitempty"`
	Institution *string `json:"institution,omitempty"`

	Email      *string `json:"email,omitempty"`
	NationalID *string `json:"national_id,omitempty"`
	Role       *string `json:"role,omitempty"`
}

// UserPatch is the set of mutable user columns passed to the repository.
// ClearPhone sets phone to NULL and takes precedence over Phone.
type UserPatch struct {
	Name        *string
	Surname     *string
	Phone       *string
	ClearPhone  bool
	Program     *string
	Institution *string
}

// UserSummary is the admin-facing listing row
type UserSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary strips a user down to the admin listing fields
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
