package appointments

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	// Transition меняет статус, только если текущий входит в from
	Transition(ctx context.Context, id uuid.UUID, from []domain.AppointmentStatus, change domain.AppointmentChange) (*domain.Appointment, error)
}

// ReminderCanceller отменяет напоминания приёма
type ReminderCanceller interface {
	CancelForAppointment(ctx context.Context, appointmentID uuid.UUID) error
}

// Notifier уведомляет владельца о смене статуса
type Notifier interface {
	AppointmentStatusChanged(ctx context.Context, appointment *domain.Appointment)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
