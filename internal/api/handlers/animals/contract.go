package animals

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/service/animals/models"
)

type AnimalService interface {
	Create(ctx context.Context, p domain.Principal, req *models.CreateAnimalRequest) (*models.AnimalResponse, error)
	ListMine(ctx context.Context, p domain.Principal) (*models.AnimalListResponse, error)
	GetByID(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.AnimalResponse, error)
	Update(ctx context.Context, p domain.Principal, id uuid.UUID, req *models.UpdateAnimalRequest) (*models.AnimalResponse, error)
	Delete(ctx context.Context, p domain.Principal, id uuid.UUID) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
