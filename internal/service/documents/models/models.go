package models

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// UploadRequest загружаемый файл
type UploadRequest struct {
	AppointmentID uuid.UUID
	FileName      string
	Content       io.Reader
}

// DocumentResponse метаданные документа
type DocumentResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointmentId"`
	UploadedBy    uuid.UUID `json:"uploadedBy"`
	FileName      string    `json:"fileName"`
	ContentType   string    `json:"contentType"`
	SizeBytes     int64     `json:"sizeBytes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DocumentListResponse документы приёма
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// FromDomainDocument конвертирует доменную модель в ответ
func FromDomainDocument(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:            d.ID,
		AppointmentID: d.AppointmentID,
		UploadedBy:    d.UploadedBy,
		FileName:      d.FileName,
		ContentType:   d.ContentType,
		SizeBytes:     d.SizeBytes,
		CreatedAt:     d.CreatedAt,
	}
}

// FromDomainDocumentList конвертирует список документов
func FromDomainDocumentList(list []*domain.Document) *DocumentListResponse {
	resp := &DocumentListResponse{Documents: make([]DocumentResponse, 0, len(list))}
	for _, d := range list {
		resp.Documents = append(resp.Documents, *FromDomainDocument(d))
	}
	return resp
}
