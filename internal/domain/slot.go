package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a bookable grid cell of a clinic, optionally bound to a vet.
// Slots are seeded, they are never generated from business hours.
type TimeSlot struct {
	ID          uuid.UUID
	ClinicID    uuid.UUID
	VetID       *uuid.UUID
	StartAt     time.Time
	EndAt       time.Time
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Interval returns [StartAt, EndAt)
func (s *TimeSlot) Interval() Interval {
	return Interval{Start: s.StartAt, End: s.EndAt}
}

// DurationMinutes returns slot length in minutes
func (s *TimeSlot) DurationMinutes() int {
	return int(s.EndAt.Sub(s.StartAt) / time.Minute)
}

// AppliesTo reports whether a vet-scoped event (appointment, block) concerns this slot.
// A slot without a vet is shared by all vets of the clinic.
func (s *TimeSlot) AppliesTo(vetID uuid.UUID) bool {
	return s.VetID == nil || *s.VetID == vetID
}

// TimeSlotFilter selects slots intersecting [From, To)
type TimeSlotFilter struct {
	ClinicID      uuid.UUID
	VetID         *uuid.UUID
	From          time.Time
	To            time.Time
	OnlyAvailable bool
}
