package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/service/notifications/models"
)

type NotificationService interface {
	ListMine(ctx context.Context, req *models.ListRequest) (*models.NotificationListResponse, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.NotificationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
