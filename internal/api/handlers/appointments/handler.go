package appointments

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	appointmentService "github.com/m04kA/SMC-VetBookingService/internal/service/appointments"
	"github.com/m04kA/SMC-VetBookingService/internal/service/appointments/models"
)

const (
	msgUnauthorized         = "требуется авторизация"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidAppointmentID = "некорректный ID приёма"
	msgInvalidDateTime      = "некорректный формат времени, ожидается RFC3339"
	msgInvalidInput         = "некорректные данные приёма"
	msgAppointmentNotFound  = "приём не найден"
	msgAccessDenied         = "нет доступа к приёму"
	msgStatusConflict       = "текущий статус приёма не позволяет это действие"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ListMine GET /api/appointments/me?status=&from=&to=
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		h.logger.Warn("GET /appointments/me - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}
	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		h.logger.Warn("GET /appointments/me - Invalid to: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.service.ListMine(r.Context(), principal, &models.ListRequest{
		Status: handlers.QueryString(r, "status"),
		From:   from,
		To:     to,
	})
	if err != nil {
		h.respondError(w, "GET /appointments/me", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Get GET /api/appointments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.target(w, r, "GET /appointments/{id}")
	if !ok {
		return
	}

	result, err := h.service.GetByID(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "GET /appointments/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Confirm PATCH /api/appointments/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.target(w, r, "PATCH /appointments/{id}/confirm")
	if !ok {
		return
	}

	result, err := h.service.Confirm(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "PATCH /appointments/{id}/confirm", err)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/confirm - Appointment confirmed: appointment_id=%s, by=%s", id, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Reject PATCH /api/appointments/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.target(w, r, "PATCH /appointments/{id}/reject")
	if !ok {
		return
	}

	var req models.RejectRequest
	if !h.decodeOptional(w, r, "PATCH /appointments/{id}/reject", &req) {
		return
	}

	result, err := h.service.Reject(r.Context(), principal, id, &req)
	if err != nil {
		h.respondError(w, "PATCH /appointments/{id}/reject", err)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/reject - Appointment rejected: appointment_id=%s, by=%s", id, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Complete PATCH /api/appointments/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.target(w, r, "PATCH /appointments/{id}/complete")
	if !ok {
		return
	}

	var req models.CompleteRequest
	if !h.decodeOptional(w, r, "PATCH /appointments/{id}/complete", &req) {
		return
	}

	result, err := h.service.Complete(r.Context(), principal, id, &req)
	if err != nil {
		h.respondError(w, "PATCH /appointments/{id}/complete", err)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/complete - Appointment completed: appointment_id=%s", id)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Cancel PATCH /api/appointments/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.target(w, r, "PATCH /appointments/{id}/cancel")
	if !ok {
		return
	}

	var req models.CancelRequest
	if !h.decodeOptional(w, r, "PATCH /appointments/{id}/cancel", &req) {
		return
	}

	result, err := h.service.Cancel(r.Context(), principal, id, &req)
	if err != nil {
		h.respondError(w, "PATCH /appointments/{id}/cancel", err)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/cancel - Appointment cancelled: appointment_id=%s, by=%s", id, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// target достаёт вызывающего и ID приёма из пути
func (h *Handler) target(w http.ResponseWriter, r *http.Request, route string) (domain.Principal, uuid.UUID, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return domain.Principal{}, uuid.Nil, false
	}

	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("%s - Invalid appointment ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return domain.Principal{}, uuid.Nil, false
	}
	return principal, id, true
}

// decodeOptional читает тело, если оно есть. Пустое тело допустимо.
func (h *Handler) decodeOptional(w http.ResponseWriter, r *http.Request, route string, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := handlers.DecodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, appointmentService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, appointmentService.ErrAppointmentNotFound):
		h.logger.Warn("%s - Appointment not found", route)
		handlers.RespondNotFound(w, msgAppointmentNotFound)

	case errors.Is(err, appointmentService.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", route)
		handlers.RespondForbidden(w, msgAccessDenied)

	case errors.Is(err, appointmentService.ErrStatusConflict):
		h.logger.Warn("%s - Status conflict: %v", route, err)
		handlers.RespondConflict(w, msgStatusConflict)

	default:
		h.logger.Error("%s - Internal error: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
