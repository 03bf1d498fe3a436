package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-VetBookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date     string          `json:"date"`
	ClinicID uuid.UUID       `json:"clinicId"`
	VetID    *uuid.UUID      `json:"vetId,omitempty"`
	Slots    []AvailableSlot `json:"slots"`
}

// AvailableSlot модель свободного слота
type AvailableSlot struct {
	ID              uuid.UUID  `json:"id"`
	VetID           *uuid.UUID `json:"vetId,omitempty"`
	Start           time.Time  `json:"start"`
	End             time.Time  `json:"end"`
	DurationMinutes int        `json:"durationMinutes"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			ID:              slot.ID,
			VetID:           slot.VetID,
			Start:           slot.Start,
			End:             slot.End,
			DurationMinutes: slot.DurationMinutes,
		}
	}

	return &AvailableSlotsResponse{
		Date:     resp.Date.Format(domain.DateFormat),
		ClinicID: resp.ClinicID,
		VetID:    resp.VetID,
		Slots:    slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(clinicID uuid.UUID, vetID *uuid.UUID, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		ClinicID: clinicID,
		VetID:    vetID,
		Date:     date,
	}, nil
}
