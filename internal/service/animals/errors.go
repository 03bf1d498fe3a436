package animals

import "errors"

var (
	// ErrAnimalNotFound возвращается, когда животное не найдено
	ErrAnimalNotFound = errors.New("animal not found")

	// ErrAccessDenied возвращается, когда животное принадлежит другому владельцу
	ErrAccessDenied = errors.New("access denied")

	// ErrAnimalInUse возвращается при удалении животного с приёмами
	ErrAnimalInUse = errors.New("animal has appointments")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
