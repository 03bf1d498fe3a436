package domain

import (
	"time"

	"github.com/google/uuid"
)

// Animal is a pet registered by its owner
type Animal struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Species   string
	Breed     *string
	Sex       *string
	BirthDate *time.Time
	WeightKg  *float64
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
