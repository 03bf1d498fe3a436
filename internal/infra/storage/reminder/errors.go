package reminder

import "errors"

var (
	// ErrRuleNotFound возвращается, когда правило не найдено
	ErrRuleNotFound = errors.New("reminder.repository: rule not found")

	// ErrInstanceNotScheduled возвращается, когда напоминание уже обработано
	ErrInstanceNotScheduled = errors.New("reminder.repository: instance is not scheduled")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reminder.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reminder.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reminder.repository: failed to scan row")
)
