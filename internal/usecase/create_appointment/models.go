package create_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Request модель запроса на запись к врачу
type Request struct {
	Principal domain.Principal // Кто записывает
	ClinicID  uuid.UUID        // ID клиники
	AnimalID  uuid.UUID        // ID животного
	VetID     uuid.UUID        // ID врача
	TypeID    *uuid.UUID       // Тип приёма (опционально)
	StartAt   time.Time        // Начало приёма
	Notes     *string          // Комментарий владельца (опционально)
}

// Response модель ответа с созданным приёмом
type Response struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	AnimalID  uuid.UUID
	VetID     uuid.UUID
	TypeID    *uuid.UUID
	Status    string
	StartAt   time.Time
	EndAt     time.Time
	CreatedBy uuid.UUID
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
