package slots

import "errors"

var (
	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrVetNotInClinic возвращается, когда врач слота не работает в клинике
	ErrVetNotInClinic = errors.New("vet does not work in this clinic")

	// ErrInvalidTimeRange возвращается, когда начало слота не раньше конца
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
