package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User carries authentication and profile data. Rows are soft deleted; a
// set DeletedAt hides the user from every repository query.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Username       *string    `json:"username,omitempty"`
	HashedPassword string     `json:"-"`
	IsActive       bool       `json:"is_active"`
	IsSuperuser    bool       `json:"is_superuser"`
	FirstName      *string    `json:"first_name,omitempty"`
	LastName       *string    `json:"last_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"`
}

func (u *User) String() string {
	return fmt.Sprintf("<User(id=%s, email=%s)>", u.ID, u.Email)
}

// FullName joins first and last name, falling back to whichever is set.
func (u *User) FullName() string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	case u.LastName != nil:
		return *u.LastName
	default:
		return ""
	}
}
