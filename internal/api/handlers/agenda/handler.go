package agenda

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	agendaService "github.com/m04kA/SMC-VetBookingService/internal/service/agenda"
	"github.com/m04kA/SMC-VetBookingService/internal/service/agenda/models"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBlockID     = "некорректный ID блока"
	msgInvalidDateTime    = "некорректный формат времени, ожидается RFC3339"
	msgInvalidInput       = "некорректные данные блока"
	msgInvalidTimeRange   = "некорректный период"
	msgClinicNotFound     = "клиника не найдена"
	msgVetNotInClinic     = "врач не работает в этой клинике"
	msgBlockNotFound      = "блок не найден"
	msgAccessDenied       = "нет прав на этот блок"
)

type Handler struct {
	service AgendaService
	logger  Logger
}

func NewHandler(service AgendaService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// GetMine GET /api/agenda/me?from=&to=
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		h.logger.Warn("GET /agenda/me - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}
	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		h.logger.Warn("GET /agenda/me - Invalid to: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.service.GetMine(r.Context(), principal, &models.GetMineRequest{From: from, To: to})
	if err != nil {
		h.respondError(w, "GET /agenda/me", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// CreateBlock POST /api/agenda/blocks
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /agenda/blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateBlock(r.Context(), principal, &req)
	if err != nil {
		h.respondError(w, "POST /agenda/blocks", err)
		return
	}

	h.logger.Info("POST /agenda/blocks - Block created: block_id=%s, vet_id=%s", result.ID, principal.UserID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// DeleteBlock DELETE /api/agenda/blocks/{id}
func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	blockID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("DELETE /agenda/blocks/{id} - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	if err := h.service.DeleteBlock(r.Context(), principal, blockID); err != nil {
		h.respondError(w, "DELETE /agenda/blocks/{id}", err)
		return
	}

	h.logger.Info("DELETE /agenda/blocks/{id} - Block deleted: block_id=%s, by=%s", blockID, principal.UserID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, agendaService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, agendaService.ErrInvalidTimeRange):
		h.logger.Warn("%s - Invalid time range: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidTimeRange)

	case errors.Is(err, agendaService.ErrClinicNotFound):
		h.logger.Warn("%s - Clinic not found", route)
		handlers.RespondNotFound(w, msgClinicNotFound)

	case errors.Is(err, agendaService.ErrVetNotInClinic):
		h.logger.Warn("%s - Vet not in clinic", route)
		handlers.RespondForbidden(w, msgVetNotInClinic)

	case errors.Is(err, agendaService.ErrBlockNotFound):
		h.logger.Warn("%s - Block not found", route)
		handlers.RespondNotFound(w, msgBlockNotFound)

	case errors.Is(err, agendaService.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", route)
		handlers.RespondForbidden(w, msgAccessDenied)

	default:
		h.logger.Error("%s - Internal error: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
