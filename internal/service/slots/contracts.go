package slots

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, s *domain.TimeSlot) (*domain.TimeSlot, error)
}

// ClinicRepository интерфейс репозитория клиник
type ClinicRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error)
	IsVetOfClinic(ctx context.Context, clinicID, vetID uuid.UUID) (bool, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
