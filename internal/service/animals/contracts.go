package animals

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// AnimalRepository интерфейс репозитория животных
type AnimalRepository interface {
	Create(ctx context.Context, a *domain.Animal) (*domain.Animal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Animal, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Animal, error)
	Update(ctx context.Context, a *domain.Animal) (*domain.Animal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
