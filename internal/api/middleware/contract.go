package middleware

import (
	"time"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// TokenParser проверяет access токен и возвращает вызывающего
type TokenParser interface {
	ParseToken(token string) (domain.Principal, error)
}

// HTTPMetrics сборщик метрик HTTP запросов
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
