package get_available_slots

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// ClinicRepository интерфейс репозитория клиник
type ClinicRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error)
	// ListVets возвращает врачей, прикреплённых к клинике
	ListVets(ctx context.Context, clinicID uuid.UUID) ([]*domain.User, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	// List возвращает слоты клиники, пересекающие интервал фильтра
	List(ctx context.Context, filter domain.TimeSlotFilter) ([]*domain.TimeSlot, error)
}

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
}

// AgendaRepository интерфейс репозитория блоков недоступности
type AgendaRepository interface {
	List(ctx context.Context, filter domain.AgendaBlockFilter) ([]*domain.AgendaBlock, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
