package agenda

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// AgendaRepository интерфейс репозитория блоков недоступности
type AgendaRepository interface {
	Create(ctx context.Context, b *domain.AgendaBlock) (*domain.AgendaBlock, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AgendaBlock, error)
	List(ctx context.Context, filter domain.AgendaBlockFilter) ([]*domain.AgendaBlock, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
}

// ClinicRepository интерфейс репозитория клиник
type ClinicRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error)
	IsVetOfClinic(ctx context.Context, clinicID, vetID uuid.UUID) (bool, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
