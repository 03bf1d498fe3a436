package domain

import "github.com/google/uuid"

// Principal is the authenticated caller, taken from the access token
type Principal struct {
	UserID      uuid.UUID
	Email       string
	PrimaryRole Role
	Roles       RoleSet
}

// IsStaff returns true if the caller holds any clinic staff role
func (p Principal) IsStaff() bool {
	return p.Roles.HasAny(StaffRoles...)
}

// Is reports whether the caller holds role r
func (p Principal) Is(r Role) bool {
	return p.Roles.Has(r)
}
