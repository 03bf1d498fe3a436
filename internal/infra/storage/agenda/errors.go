package agenda

import "errors"

var (
	// ErrBlockNotFound возвращается, когда блок расписания не найден
	ErrBlockNotFound = errors.New("agenda.repository: block not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("agenda.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("agenda.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("agenda.repository: failed to scan row")
)
