package domain

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is a veterinary clinic in the directory
type Clinic struct {
	ID        uuid.UUID
	Name      string
	Address   string
	City      string
	Phone     *string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClinicFilter filters the clinic directory
type ClinicFilter struct {
	City  *string // exact match, case-insensitive
	Query *string // substring of the name
}
