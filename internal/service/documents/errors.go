package documents

import "errors"

var (
	// ErrDocumentNotFound возвращается, когда документ или его файл не найден
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAppointmentNotFound возвращается, когда приём не найден
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAccessDenied возвращается, когда пользователь не видит приём
	ErrAccessDenied = errors.New("access denied")

	// ErrFileTooLarge возвращается при превышении лимита размера
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedType возвращается для недопустимого типа содержимого
	ErrUnsupportedType = errors.New("unsupported content type")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
