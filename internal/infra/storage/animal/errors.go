package animal

import "errors"

var (
	// ErrAnimalNotFound возвращается, когда животное не найдено
	ErrAnimalNotFound = errors.New("animal.repository: animal not found")

	// ErrAnimalInUse возвращается, когда на животное ссылаются приёмы
	ErrAnimalInUse = errors.New("animal.repository: animal has appointments")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("animal.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("animal.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("animal.repository: failed to scan row")
)
