package agenda

import "errors"

var (
	// ErrBlockNotFound возвращается, когда блок не найден
	ErrBlockNotFound = errors.New("agenda block not found")

	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrVetNotInClinic возвращается, когда врач не работает в клинике
	ErrVetNotInClinic = errors.New("vet does not work in this clinic")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на блок
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
