package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reminderService "github.com/m04kA/SMC-VetBookingService/internal/service/reminders"
	"github.com/m04kA/SMC-VetBookingService/internal/service/reminders/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
)

type countingRunner struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (c *countingRunner) RunDue(_ context.Context, now time.Time) (*models.RunDueResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, now)
	if c.err != nil {
		return nil, c.err
	}
	return &models.RunDueResponse{Processed: 1, Sent: 1}, nil
}

func (c *countingRunner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

func TestReminderWorker_RunsUntilCancelled(t *testing.T) {
	runner := &countingRunner{}
	now := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	w := NewReminderWorker(runner, 5*time.Millisecond, logger.NewDiscard()).WithTimeProvider(fixedTime{now: now})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.count() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, now, runner.calls[0])
}

func TestReminderWorker_KeepsRunningAfterErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("db down")}
	w := NewReminderWorker(runner, 5*time.Millisecond, logger.NewDiscard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool { return runner.count() >= 3 }, time.Second, time.Millisecond)
}

func TestReminderWorker_TickToleratesLockContention(t *testing.T) {
	runner := &countingRunner{err: reminderService.ErrRunInProgress}
	w := NewReminderWorker(runner, 0, logger.NewDiscard())

	assert.Equal(t, defaultInterval, w.interval)
	w.tick(context.Background())
	assert.Equal(t, 1, runner.count())
}
