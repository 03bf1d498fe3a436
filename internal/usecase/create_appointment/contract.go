package create_appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	// List внутри транзакции блокирует найденные строки (FOR UPDATE)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
}

// ClinicRepository интерфейс репозитория клиник
type ClinicRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error)
	IsVetOfClinic(ctx context.Context, clinicID, vetID uuid.UUID) (bool, error)
}

// AnimalRepository интерфейс репозитория животных
type AnimalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Animal, error)
}

// AgendaRepository интерфейс репозитория блоков недоступности
type AgendaRepository interface {
	List(ctx context.Context, filter domain.AgendaBlockFilter) ([]*domain.AgendaBlock, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker распределённая блокировка на время проверки и вставки
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// ReminderPlanner планирует напоминания для нового приёма
type ReminderPlanner interface {
	Plan(ctx context.Context, appointmentID uuid.UUID) ([]*domain.ReminderInstance, error)
}

// Notifier уведомляет врача о новой заявке
type Notifier interface {
	AppointmentRequested(ctx context.Context, appointment *domain.Appointment)
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
