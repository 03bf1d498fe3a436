package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// CreateSlotRequest ячейка сетки клиники
type CreateSlotRequest struct {
	ClinicID    uuid.UUID  `json:"clinicId"`
	VetID       *uuid.UUID `json:"vetId,omitempty"`
	StartAt     time.Time  `json:"startAt"`
	EndAt       time.Time  `json:"endAt"`
	IsAvailable *bool      `json:"isAvailable,omitempty"` // по умолчанию true
}

// SlotResponse созданный слот
type SlotResponse struct {
	ID              uuid.UUID  `json:"id"`
	ClinicID        uuid.UUID  `json:"clinicId"`
	VetID           *uuid.UUID `json:"vetId,omitempty"`
	StartAt         time.Time  `json:"startAt"`
	EndAt           time.Time  `json:"endAt"`
	DurationMinutes int        `json:"durationMinutes"`
	IsAvailable     bool       `json:"isAvailable"`
}

// FromDomainSlot конвертирует доменную модель в ответ
func FromDomainSlot(s *domain.TimeSlot) *SlotResponse {
	return &SlotResponse{
		ID:              s.ID,
		ClinicID:        s.ClinicID,
		VetID:           s.VetID,
		StartAt:         s.StartAt,
		EndAt:           s.EndAt,
		DurationMinutes: s.DurationMinutes(),
		IsAvailable:     s.IsAvailable,
	}
}
