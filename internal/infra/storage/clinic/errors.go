package clinic

import "errors"

var (
	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("clinic.repository: clinic not found")

	// ErrVetAlreadyAdded возвращается, когда врач уже привязан к клинике
	ErrVetAlreadyAdded = errors.New("clinic.repository: vet already belongs to clinic")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("clinic.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("clinic.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("clinic.repository: failed to scan row")
)
