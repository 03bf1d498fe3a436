package worker

import (
	"context"
	"time"

	"github.com/m04kA/SMC-VetBookingService/internal/service/reminders/models"
)

// ReminderRunner обрабатывает наступившие напоминания
type ReminderRunner interface {
	RunDue(ctx context.Context, now time.Time) (*models.RunDueResponse, error)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальное системное время
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time { return time.Now() }

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
