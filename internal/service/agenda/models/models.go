package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Request модели

// GetMineRequest период расписания врача
type GetMineRequest struct {
	From *time.Time `json:"from,omitempty"` // по умолчанию начало сегодняшнего дня
	To   *time.Time `json:"to,omitempty"`   // по умолчанию From + 7 дней
}

// CreateBlockRequest блок недоступности врача
type CreateBlockRequest struct {
	ClinicID uuid.UUID `json:"clinicId"`
	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
	Reason   *string   `json:"reason,omitempty"`
}

// Response модели

// BlockResponse блок недоступности
type BlockResponse struct {
	ID        uuid.UUID `json:"id"`
	ClinicID  uuid.UUID `json:"clinicId"`
	VetID     uuid.UUID `json:"vetId"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AgendaAppointment приём в расписании врача
type AgendaAppointment struct {
	ID       uuid.UUID `json:"id"`
	ClinicID uuid.UUID `json:"clinicId"`
	AnimalID uuid.UUID `json:"animalId"`
	Status   string    `json:"status"`
	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
	Notes    *string   `json:"notes,omitempty"`
}

// AgendaResponse расписание врача за период
type AgendaResponse struct {
	From         time.Time           `json:"from"`
	To           time.Time           `json:"to"`
	Appointments []AgendaAppointment `json:"appointments"`
	Blocks       []BlockResponse     `json:"blocks"`
}

// Методы конвертации

// FromDomainBlock конвертирует domain модель в DTO
func FromDomainBlock(b *domain.AgendaBlock) *BlockResponse {
	if b == nil {
		return nil
	}
	return &BlockResponse{
		ID:        b.ID,
		ClinicID:  b.ClinicID,
		VetID:     b.VetID,
		StartAt:   b.StartAt,
		EndAt:     b.EndAt,
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

// FromDomainAgenda собирает расписание из приёмов и блоков
func FromDomainAgenda(from, to time.Time, appointments []*domain.Appointment, blocks []*domain.AgendaBlock) *AgendaResponse {
	resp := &AgendaResponse{
		From:         from,
		To:           to,
		Appointments: make([]AgendaAppointment, 0, len(appointments)),
		Blocks:       make([]BlockResponse, 0, len(blocks)),
	}
	for _, a := range appointments {
		resp.Appointments = append(resp.Appointments, AgendaAppointment{
			ID:       a.ID,
			ClinicID: a.ClinicID,
			AnimalID: a.AnimalID,
			Status:   string(a.Status),
			StartAt:  a.StartAt,
			EndAt:    a.EndAt,
			Notes:    a.Notes,
		})
	}
	for _, b := range blocks {
		if br := FromDomainBlock(b); br != nil {
			resp.Blocks = append(resp.Blocks, *br)
		}
	}
	return resp
}
