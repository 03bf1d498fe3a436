package lock

import "errors"

var (
	// ErrLockNotAcquired возвращается, когда ключ уже заблокирован другим процессом
	ErrLockNotAcquired = errors.New("lock: not acquired")

	// ErrLockBackend возвращается при ошибке обращения к Redis
	ErrLockBackend = errors.New("lock: backend error")
)
