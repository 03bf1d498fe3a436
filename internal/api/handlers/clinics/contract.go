package clinics

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/service/clinics/models"
)

type ClinicService interface {
	List(ctx context.Context, req *models.ListRequest) (*models.ClinicListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClinicResponse, error)
	ListVets(ctx context.Context, clinicID uuid.UUID) (*models.VetListResponse, error)
	Create(ctx context.Context, req *models.CreateClinicRequest) (*models.ClinicResponse, error)
	AddVet(ctx context.Context, clinicID uuid.UUID, req *models.AddVetRequest) (*models.VetListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
