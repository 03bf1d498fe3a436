package clinics

import "errors"

var (
	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrNotAVet возвращается, когда у пользователя нет роли VET
	ErrNotAVet = errors.New("user is not a vet")

	// ErrVetAlreadyAdded возвращается, когда врач уже работает в клинике
	ErrVetAlreadyAdded = errors.New("vet already belongs to clinic")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
