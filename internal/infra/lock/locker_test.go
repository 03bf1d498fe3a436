package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopLocker_RunsFn(t *testing.T) {
	called := false
	err := NoopLocker{}.WithLock(context.Background(), "k", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	boom := errors.New("boom")
	err = NoopLocker{}.WithLock(context.Background(), "k", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestAppointmentKey_IgnoresLocation(t *testing.T) {
	vet := uuid.New()
	utc := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+3", 3*60*60)

	assert.Equal(t, AppointmentKey(vet, utc), AppointmentKey(vet, utc.In(loc)))
	assert.NotEqual(t, AppointmentKey(vet, utc), AppointmentKey(vet, utc.Add(30*time.Minute)))
}

func TestRedisLocker_BackendUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, time.Second)
	called := false
	err := locker.WithLock(context.Background(), "k", func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrLockBackend)
	assert.False(t, called)
}
