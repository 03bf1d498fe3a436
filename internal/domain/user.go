package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account (pet owner, vet or clinic staff)
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	PrimaryRole  Role
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns "First Last"
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Principal builds the token subject for the user
func (u *User) Principal() Principal {
	return Principal{
		UserID:      u.ID,
		Email:       u.Email,
		PrimaryRole: u.PrimaryRole,
		Roles:       u.Roles,
	}
}

// GrantRole adds r to the user's roles. Staff and vet roles take precedence
// over OWNER as the primary role.
func (u *User) GrantRole(r Role) {
	u.Roles = u.Roles.Add(r)
	if rolePrecedence(r) > rolePrecedence(u.PrimaryRole) {
		u.PrimaryRole = r
	}
}

func rolePrecedence(r Role) int {
	switch r {
	case RoleAdmin:
		return 5
	case RoleClinicAdmin:
		return 4
	case RoleVet:
		return 3
	case RoleAssistant:
		return 2
	case RoleOwner:
		return 1
	default:
		return 0
	}
}
