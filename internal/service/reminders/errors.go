package reminders

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда приём не найден
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrRunInProgress возвращается, когда обработка уже запущена другим процессом
	ErrRunInProgress = errors.New("reminder processing already in progress")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
