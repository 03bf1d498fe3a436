package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Request модели

// ListRequest фильтр списка своих приёмов
type ListRequest struct {
	Status *string    `json:"status,omitempty"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
}

// RejectRequest отклонение приёма
type RejectRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CompleteRequest завершение приёма врачом
type CompleteRequest struct {
	Notes  *string `json:"notes,omitempty"`
	Report *string `json:"report,omitempty"`
}

// CancelRequest отмена приёма
type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// Response модели

// AppointmentResponse приём
type AppointmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	ClinicID     uuid.UUID  `json:"clinicId"`
	AnimalID     uuid.UUID  `json:"animalId"`
	VetID        uuid.UUID  `json:"vetId"`
	TypeID       *uuid.UUID `json:"typeId,omitempty"`
	Status       string     `json:"status"`
	StartAt      time.Time  `json:"startAt"`
	EndAt        time.Time  `json:"endAt"`
	CreatedBy    uuid.UUID  `json:"createdBy"`
	Notes        *string    `json:"notes,omitempty"`
	Report       *string    `json:"report,omitempty"`
	RejectReason *string    `json:"rejectReason,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// AppointmentListResponse список приёмов
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}
	return &AppointmentResponse{
		ID:           a.ID,
		ClinicID:     a.ClinicID,
		AnimalID:     a.AnimalID,
		VetID:        a.VetID,
		TypeID:       a.TypeID,
		Status:       string(a.Status),
		StartAt:      a.StartAt,
		EndAt:        a.EndAt,
		CreatedBy:    a.CreatedBy,
		Notes:        a.Notes,
		Report:       a.Report,
		RejectReason: a.RejectReason,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список приёмов в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{Appointments: make([]AppointmentResponse, 0, len(list))}
	for _, a := range list {
		if ar := FromDomainAppointment(a); ar != nil {
			resp.Appointments = append(resp.Appointments, *ar)
		}
	}
	return resp
}
