package documents

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// DocumentRepository интерфейс репозитория метаданных документов
type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) (*domain.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*domain.Document, error)
}

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
}

// FileStore интерфейс хранилища содержимого файлов
type FileStore interface {
	Save(key string, r io.Reader, maxBytes int64) (int64, error)
	Open(key string) (io.ReadCloser, error)
	Remove(key string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
