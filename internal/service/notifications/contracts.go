package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// NotificationRepository интерфейс репозитория уведомлений
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID, readAt time.Time) (*domain.Notification, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AnimalRepository интерфейс репозитория животных
type AnimalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Animal, error)
}

// ClinicRepository интерфейс репозитория клиник
type ClinicRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error)
}

// Mailer отправка email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MetricsRecorder учитывает доставленные уведомления
type MetricsRecorder interface {
	NotificationProcessed(channel, status string)
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
