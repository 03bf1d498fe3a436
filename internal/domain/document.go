package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a file attached to an appointment
type Document struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	UploadedBy    uuid.UUID
	FileName      string
	ContentType   string
	SizeBytes     int64
	StorageKey    string
	CreatedAt     time.Time
}
