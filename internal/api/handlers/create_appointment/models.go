package create_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	createAppointment "github.com/m04kA/SMC-VetBookingService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ClinicID uuid.UUID  `json:"clinicId"`
	AnimalID uuid.UUID  `json:"animalId"`
	VetID    uuid.UUID  `json:"vetId"`
	TypeID   *uuid.UUID `json:"typeId,omitempty"`
	StartAt  time.Time  `json:"startAt"` // RFC3339
	Notes    *string    `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	ClinicID  uuid.UUID  `json:"clinicId"`
	AnimalID  uuid.UUID  `json:"animalId"`
	VetID     uuid.UUID  `json:"vetId"`
	TypeID    *uuid.UUID `json:"typeId,omitempty"`
	Status    string     `json:"status"`
	StartAt   string     `json:"startAt"`
	EndAt     string     `json:"endAt"`
	CreatedBy uuid.UUID  `json:"createdBy"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(p domain.Principal) *createAppointment.Request {
	return &createAppointment.Request{
		Principal: p,
		ClinicID:  r.ClinicID,
		AnimalID:  r.AnimalID,
		VetID:     r.VetID,
		TypeID:    r.TypeID,
		StartAt:   r.StartAt,
		Notes:     r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:        resp.ID,
		ClinicID:  resp.ClinicID,
		AnimalID:  resp.AnimalID,
		VetID:     resp.VetID,
		TypeID:    resp.TypeID,
		Status:    resp.Status,
		StartAt:   resp.StartAt.Format(time.RFC3339),
		EndAt:     resp.EndAt.Format(time.RFC3339),
		CreatedBy: resp.CreatedBy,
		Notes:     resp.Notes,
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}
