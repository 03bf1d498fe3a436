package domain

import (
	"time"

	"github.com/google/uuid"
)

// AgendaBlock is a vet-declared unavailability window
type AgendaBlock struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	VetID     uuid.UUID
	StartAt   time.Time
	EndAt     time.Time
	Reason    *string
	CreatedAt time.Time
}

// Interval returns [StartAt, EndAt)
func (b *AgendaBlock) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt}
}

// AgendaBlockFilter selects blocks overlapping [From, To)
type AgendaBlockFilter struct {
	ClinicID *uuid.UUID
	VetID    *uuid.UUID
	VetIDs   []uuid.UUID // any of these vets, in any clinic
	From     time.Time
	To       time.Time
}
