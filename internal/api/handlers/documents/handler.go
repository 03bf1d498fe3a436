package documents

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	documentService "github.com/m04kA/SMC-VetBookingService/internal/service/documents"
	"github.com/m04kA/SMC-VetBookingService/internal/service/documents/models"
)

const (
	// fileField имя multipart поля с файлом
	fileField = "file"

	// multipartOverhead запас на заголовки multipart сверх размера файла
	multipartOverhead = 64 << 10
)

const (
	msgUnauthorized         = "требуется авторизация"
	msgInvalidAppointmentID = "некорректный ID приёма"
	msgInvalidDocumentID    = "некорректный ID документа"
	msgInvalidMultipart     = "ожидается multipart/form-data с полем file"
	msgInvalidInput         = "некорректный файл"
	msgFileTooLarge         = "файл слишком большой"
	msgUnsupportedType      = "недопустимый тип файла"
	msgAppointmentNotFound  = "приём не найден"
	msgDocumentNotFound     = "документ не найден"
	msgAccessDenied         = "нет доступа к документам приёма"
)

type Handler struct {
	service  DocumentService
	maxBytes int64
	logger   Logger
}

func NewHandler(service DocumentService, maxBytes int64, logger Logger) *Handler {
	return &Handler{
		service:  service,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Upload POST /api/documents/upload/appointment/{id}
// Файл читается потоком из поля file, без буферизации формы на диск
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	appointmentID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("POST /documents/upload/appointment/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	reader, err := r.MultipartReader()
	if err != nil {
		h.logger.Warn("POST /documents/upload/appointment/{id} - Not a multipart request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMultipart)
		return
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				h.logger.Warn("POST /documents/upload/appointment/{id} - Missing file field")
			} else {
				h.logger.Warn("POST /documents/upload/appointment/{id} - Invalid multipart body: %v", err)
			}
			handlers.RespondBadRequest(w, msgInvalidMultipart)
			return
		}
		if part.FormName() != fileField {
			_ = part.Close()
			continue
		}

		result, err := h.service.Upload(r.Context(), principal, &models.UploadRequest{
			AppointmentID: appointmentID,
			FileName:      part.FileName(),
			Content:       part,
		})
		_ = part.Close()
		if err != nil {
			h.respondError(w, "POST /documents/upload/appointment/{id}", err)
			return
		}

		h.logger.Info("POST /documents/upload/appointment/{id} - Document uploaded: document_id=%s, appointment_id=%s, size=%d",
			result.ID, appointmentID, result.SizeBytes)
		handlers.RespondJSON(w, http.StatusCreated, result)
		return
	}
}

// Download GET /api/documents/download/{id}
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	documentID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("GET /documents/download/{id} - Invalid document ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDocumentID)
		return
	}

	meta, content, err := h.service.Open(r.Context(), principal, documentID)
	if err != nil {
		h.respondError(w, "GET /documents/download/{id}", err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(meta.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": meta.FileName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		h.logger.Error("GET /documents/download/{id} - Failed to stream document: document_id=%s, error=%v", documentID, err)
	}
}

// ListByAppointment GET /api/documents/appointment/{id}
func (h *Handler) ListByAppointment(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	appointmentID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("GET /documents/appointment/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.service.ListByAppointment(r.Context(), principal, appointmentID)
	if err != nil {
		h.respondError(w, "GET /documents/appointment/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, documentService.ErrFileTooLarge):
		h.logger.Warn("%s - File too large: %v", route, err)
		handlers.RespondError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)

	case errors.Is(err, documentService.ErrUnsupportedType):
		h.logger.Warn("%s - Unsupported type: %v", route, err)
		handlers.RespondError(w, http.StatusUnsupportedMediaType, msgUnsupportedType)

	case errors.Is(err, documentService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, documentService.ErrAppointmentNotFound):
		h.logger.Warn("%s - Appointment not found", route)
		handlers.RespondNotFound(w, msgAppointmentNotFound)

	case errors.Is(err, documentService.ErrDocumentNotFound):
		h.logger.Warn("%s - Document not found", route)
		handlers.RespondNotFound(w, msgDocumentNotFound)

	case errors.Is(err, documentService.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", route)
		handlers.RespondForbidden(w, msgAccessDenied)

	default:
		h.logger.Error("%s - Internal error: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
