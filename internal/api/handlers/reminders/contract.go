package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/service/reminders/models"
)

type ReminderService interface {
	PlanAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.InstanceListResponse, error)
	RunDue(ctx context.Context, now time.Time) (*models.RunDueResponse, error)
	CreateRule(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error)
	ListRules(ctx context.Context) (*models.RuleListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
