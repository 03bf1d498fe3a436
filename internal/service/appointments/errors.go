package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда приём не найден
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на приём
	ErrAccessDenied = errors.New("access denied")

	// ErrStatusConflict возвращается, когда переход из текущего статуса невозможен
	ErrStatusConflict = errors.New("appointment status does not allow this action")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
