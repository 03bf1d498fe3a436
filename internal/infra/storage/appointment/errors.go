package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда приём не найден
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrSlotTaken возвращается при нарушении уникального индекса (vet_id, start_at)
	ErrSlotTaken = errors.New("appointment.repository: vet already has an active appointment at this time")

	// ErrStatusConflict возвращается, когда статус приёма не допускает переход
	ErrStatusConflict = errors.New("appointment.repository: status does not allow transition")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
