package worker

import (
	"context"
	"errors"
	"time"

	reminderService "github.com/m04kA/SMC-VetBookingService/internal/service/reminders"
)

const defaultInterval = time.Minute

// ReminderWorker периодически вызывает RunDue, тот же путь, что и POST /reminders/run-due
type ReminderWorker struct {
	runner   ReminderRunner
	interval time.Duration
	clock    TimeProvider
	logger   Logger
}

func NewReminderWorker(runner ReminderRunner, interval time.Duration, logger Logger) *ReminderWorker {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &ReminderWorker{
		runner:   runner,
		interval: interval,
		clock:    RealTimeProvider{},
		logger:   logger,
	}
}

// WithTimeProvider устанавливает провайдер времени (для тестов)
func (w *ReminderWorker) WithTimeProvider(tp TimeProvider) *ReminderWorker {
	w.clock = tp
	return w
}

// Run блокируется до отмены ctx
func (w *ReminderWorker) Run(ctx context.Context) {
	w.logger.Info("Reminder worker started, interval=%s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ReminderWorker) tick(ctx context.Context) {
	result, err := w.runner.RunDue(ctx, w.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, reminderService.ErrRunInProgress):
			w.logger.Info("Reminder worker: run skipped, another instance is processing")
		case errors.Is(err, context.Canceled):
		default:
			w.logger.Error("Reminder worker: run failed: %v", err)
		}
		return
	}
	if result.Processed > 0 {
		w.logger.Info("Reminder worker: processed=%d, sent=%d, failed=%d", result.Processed, result.Sent, result.Failed)
	}
}
