package agenda

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/service/agenda/models"
)

type AgendaService interface {
	GetMine(ctx context.Context, p domain.Principal, req *models.GetMineRequest) (*models.AgendaResponse, error)
	CreateBlock(ctx context.Context, p domain.Principal, req *models.CreateBlockRequest) (*models.BlockResponse, error)
	DeleteBlock(ctx context.Context, p domain.Principal, id uuid.UUID) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
