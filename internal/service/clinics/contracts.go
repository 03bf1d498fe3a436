package clinics

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// ClinicRepository интерфейс репозитория клиник
type ClinicRepository interface {
	Create(ctx context.Context, c *domain.Clinic) (*domain.Clinic, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error)
	List(ctx context.Context, filter domain.ClinicFilter) ([]*domain.Clinic, error)
	AddVet(ctx context.Context, clinicID, vetID uuid.UUID) error
	ListVets(ctx context.Context, clinicID uuid.UUID) ([]*domain.User, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
