package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// ReminderRepository интерфейс репозитория правил и экземпляров напоминаний
type ReminderRepository interface {
	CreateRule(ctx context.Context, rule *domain.ReminderRule) (*domain.ReminderRule, error)
	GetRule(ctx context.Context, id uuid.UUID) (*domain.ReminderRule, error)
	ListRules(ctx context.Context) ([]*domain.ReminderRule, error)
	ListActiveRules(ctx context.Context, scope domain.ReminderScope) ([]*domain.ReminderRule, error)
	CreateInstanceIfAbsent(ctx context.Context, inst *domain.ReminderInstance) (bool, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*domain.ReminderInstance, error)
	FetchDue(ctx context.Context, now time.Time, limit int) ([]*domain.ReminderInstance, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	CancelScheduled(ctx context.Context, appointmentID uuid.UUID) (int64, error)
}

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
}

// AnimalRepository интерфейс репозитория животных
type AnimalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Animal, error)
}

// ClinicRepository интерфейс репозитория клиник
type ClinicRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error)
}

// Dispatcher доставляет напоминание пользователю
type Dispatcher interface {
	DispatchReminder(ctx context.Context, rule *domain.ReminderRule, inst *domain.ReminderInstance) error
}

// Locker не даёт двум обработчикам работать одновременно
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// MetricsRecorder учитывает результат обработки напоминания
type MetricsRecorder interface {
	ReminderProcessed(status string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
