package documents

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/service/documents/models"
)

type DocumentService interface {
	Upload(ctx context.Context, p domain.Principal, req *models.UploadRequest) (*models.DocumentResponse, error)
	Open(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.DocumentResponse, io.ReadCloser, error)
	ListByAppointment(ctx context.Context, p domain.Principal, appointmentID uuid.UUID) (*models.DocumentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
