package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "vetbooking:lock:"

// Locker выполняет fn под распределённой блокировкой ключа
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// RedisLocker блокировка на SET NX с TTL и снятием через Lua-скрипт по токену владельца
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker создает блокировщик поверх Redis
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
	}
}

// WithLock захватывает ключ, выполняет fn с таймаутом ttl и освобождает ключ
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	fullKey := keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: acquire %s: %v", ErrLockBackend, key, err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		// Снимаем блокировку даже если ctx запроса уже отменён
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = l.release(releaseCtx, fullKey, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: release %s: %v", ErrLockBackend, key, err)
	}
	return nil
}

// NoopLocker выполняет fn без блокировки (Redis выключен, защиту даёт БД)
type NoopLocker struct{}

// WithLock вызывает fn
func (NoopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// AppointmentKey ключ блокировки записи к врачу на время начала
func AppointmentKey(vetID uuid.UUID, start time.Time) string {
	return fmt.Sprintf("appointment:%s:%d", vetID, start.UTC().Unix())
}

// ReminderRunKey ключ блокировки прогона напоминаний
const ReminderRunKey = "reminders:run-due"
