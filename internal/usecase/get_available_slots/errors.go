package get_available_slots

import "errors"

var (
	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("get_available_slots: clinic not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
