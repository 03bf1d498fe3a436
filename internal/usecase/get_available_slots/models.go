package get_available_slots

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	ClinicID uuid.UUID  // ID клиники
	VetID    *uuid.UUID // ID врача (опционально)
	Date     time.Time  // Календарная дата (время игнорируется)
}

// Response модель ответа со списком свободных слотов
type Response struct {
	Date     time.Time  // Начало запрошенного дня в часовом поясе сервиса
	ClinicID uuid.UUID  // ID клиники
	VetID    *uuid.UUID // ID врача, если фильтр был задан
	Slots    []Slot     // Свободные слоты по возрастанию начала
}

// Slot модель свободного слота
type Slot struct {
	ID              uuid.UUID  // ID слота
	VetID           *uuid.UUID // Врач слота, nil для общего слота клиники
	Start           time.Time  // Начало
	End             time.Time  // Конец (не включительно)
	DurationMinutes int        // Длительность в минутах
}
