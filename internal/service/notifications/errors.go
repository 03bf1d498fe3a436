package notifications

import "errors"

var (
	// ErrNotificationNotFound возвращается, когда уведомление не найдено или чужое
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrUnknownTemplate возвращается для неизвестного типа уведомления
	ErrUnknownTemplate = errors.New("unknown notification template")

	// ErrDeliveryFailed возвращается, когда хотя бы один канал не доставил уведомление
	ErrDeliveryFailed = errors.New("notification delivery failed")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
