package create_appointment

import "errors"

var (
	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("create_appointment: clinic not found")

	// ErrAnimalNotFound возвращается, когда животное не найдено
	ErrAnimalNotFound = errors.New("create_appointment: animal not found")

	// ErrVetNotInClinic возвращается, когда врач не работает в клинике
	ErrVetNotInClinic = errors.New("create_appointment: vet does not belong to clinic")

	// ErrForbidden возвращается, когда пользователь не может записать это животное
	ErrForbidden = errors.New("create_appointment: not allowed to book for this animal")

	// ErrStartInPast возвращается при записи на прошедшее время
	ErrStartInPast = errors.New("create_appointment: start is in the past")

	// ErrSlotAlreadyBooked возвращается, когда у врача уже есть приём, пересекающий это время
	ErrSlotAlreadyBooked = errors.New("create_appointment: slot already booked")

	// ErrVetUnavailable возвращается, когда время попадает в блок недоступности врача
	ErrVetUnavailable = errors.New("create_appointment: vet is unavailable at this time")

	// ErrBookingInProgress возвращается, когда это время прямо сейчас бронирует другой запрос
	ErrBookingInProgress = errors.New("create_appointment: another booking for this time is in progress")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
