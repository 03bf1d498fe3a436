package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Request модели

// ListRequest фильтр справочника клиник
type ListRequest struct {
	City  *string `json:"city,omitempty"`
	Query *string `json:"q,omitempty"`
}

// CreateClinicRequest данные новой клиники
type CreateClinicRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
}

// AddVetRequest привязка врача к клинике
type AddVetRequest struct {
	VetID uuid.UUID `json:"vetId"`
}

// Response модели

// ClinicResponse клиника
type ClinicResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ClinicListResponse список клиник
type ClinicListResponse struct {
	Clinics []ClinicResponse `json:"clinics"`
}

// VetResponse врач клиники
type VetResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     *string   `json:"phone,omitempty"`
}

// VetListResponse список врачей клиники
type VetListResponse struct {
	ClinicID uuid.UUID     `json:"clinicId"`
	Vets     []VetResponse `json:"vets"`
}

// Методы конвертации

// FromDomainClinic конвертирует доменную модель в ответ
func FromDomainClinic(c *domain.Clinic) *ClinicResponse {
	return &ClinicResponse{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		City:      c.City,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// FromDomainClinicList конвертирует список клиник
func FromDomainClinicList(list []*domain.Clinic) *ClinicListResponse {
	resp := &ClinicListResponse{Clinics: make([]ClinicResponse, 0, len(list))}
	for _, c := range list {
		resp.Clinics = append(resp.Clinics, *FromDomainClinic(c))
	}
	return resp
}

// FromDomainVetList конвертирует список врачей клиники
func FromDomainVetList(clinicID uuid.UUID, list []*domain.User) *VetListResponse {
	resp := &VetListResponse{ClinicID: clinicID, Vets: make([]VetResponse, 0, len(list))}
	for _, u := range list {
		resp.Vets = append(resp.Vets, VetResponse{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Phone:     u.Phone,
		})
	}
	return resp
}
