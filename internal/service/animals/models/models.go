package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Request модели

// CreateAnimalRequest данные нового животного
type CreateAnimalRequest struct {
	Name      string   `json:"name"`
	Species   string   `json:"species"`
	Breed     *string  `json:"breed,omitempty"`
	Sex       *string  `json:"sex,omitempty"`
	BirthDate *string  `json:"birthDate,omitempty"` // YYYY-MM-DD
	WeightKg  *float64 `json:"weightKg,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

// UpdateAnimalRequest частичное обновление, nil означает "не менять"
type UpdateAnimalRequest struct {
	Name      *string  `json:"name,omitempty"`
	Species   *string  `json:"species,omitempty"`
	Breed     *string  `json:"breed,omitempty"`
	Sex       *string  `json:"sex,omitempty"`
	BirthDate *string  `json:"birthDate,omitempty"`
	WeightKg  *float64 `json:"weightKg,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

// Response модели

// AnimalResponse животное
type AnimalResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Breed     *string   `json:"breed,omitempty"`
	Sex       *string   `json:"sex,omitempty"`
	BirthDate *string   `json:"birthDate,omitempty"`
	WeightKg  *float64  `json:"weightKg,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AnimalListResponse список животных
type AnimalListResponse struct {
	Animals []AnimalResponse `json:"animals"`
}

// Методы конвертации

// FromDomainAnimal конвертирует доменную модель в ответ
func FromDomainAnimal(a *domain.Animal) *AnimalResponse {
	resp := &AnimalResponse{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Name:      a.Name,
		Species:   a.Species,
		Breed:     a.Breed,
		Sex:       a.Sex,
		WeightKg:  a.WeightKg,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.BirthDate != nil {
		date := a.BirthDate.Format(domain.DateFormat)
		resp.BirthDate = &date
	}
	return resp
}

// FromDomainAnimalList конвертирует список животных
func FromDomainAnimalList(list []*domain.Animal) *AnimalListResponse {
	resp := &AnimalListResponse{Animals: make([]AnimalResponse, 0, len(list))}
	for _, a := range list {
		resp.Animals = append(resp.Animals, *FromDomainAnimal(a))
	}
	return resp
}
