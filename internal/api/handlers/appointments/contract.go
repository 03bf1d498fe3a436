package appointments

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/service/appointments/models"
)

type AppointmentService interface {
	GetByID(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.AppointmentResponse, error)
	ListMine(ctx context.Context, p domain.Principal, req *models.ListRequest) (*models.AppointmentListResponse, error)
	Confirm(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.AppointmentResponse, error)
	Reject(ctx context.Context, p domain.Principal, id uuid.UUID, req *models.RejectRequest) (*models.AppointmentResponse, error)
	Complete(ctx context.Context, p domain.Principal, id uuid.UUID, req *models.CompleteRequest) (*models.AppointmentResponse, error)
	Cancel(ctx context.Context, p domain.Principal, id uuid.UUID, req *models.CancelRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
