package domain

import (
	"fmt"
	"strings"
)

// Role is one of the closed set of platform roles
type Role string

const (
	RoleOwner       Role = "OWNER"
	RoleVet         Role = "VET"
	RoleAssistant   Role = "ASSISTANT"
	RoleClinicAdmin Role = "CLINIC_ADMIN"
	RoleAdmin       Role = "ADMIN"
)

// allRoles fixes the bit position of every role in RoleSet
var allRoles = []Role{RoleOwner, RoleVet, RoleAssistant, RoleClinicAdmin, RoleAdmin}

// StaffRoles may manage any clinic appointment
var StaffRoles = []Role{RoleAssistant, RoleClinicAdmin, RoleAdmin}

// ParseRole converts a literal into a Role
func ParseRole(s string) (Role, error) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range allRoles {
		if r == candidate {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) bit() RoleSet {
	for i, known := range allRoles {
		if known == r {
			return 1 << i
		}
	}
	return 0
}

// RoleSet is a bit set of roles
type RoleSet uint8

// NewRoleSet builds a set from roles
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

// RoleSetFromStrings parses stored role literals
func RoleSetFromStrings(values []string) (RoleSet, error) {
	var s RoleSet
	for _, v := range values {
		r, err := ParseRole(v)
		if err != nil {
			return 0, err
		}
		s = s.Add(r)
	}
	return s, nil
}

// Add returns the set with r included
func (s RoleSet) Add(r Role) RoleSet {
	return s | r.bit()
}

// Has reports membership of r
func (s RoleSet) Has(r Role) bool {
	b := r.bit()
	return b != 0 && s&b == b
}

// HasAny reports whether at least one of roles is in the set
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Roles lists members in declaration order
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(allRoles))
	for _, r := range allRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Strings lists members as literals
func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
