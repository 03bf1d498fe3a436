package slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	slotService "github.com/m04kA/SMC-VetBookingService/internal/service/slots"
	"github.com/m04kA/SMC-VetBookingService/internal/service/slots/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные слота"
	msgInvalidTimeRange   = "начало слота должно быть раньше конца"
	msgClinicNotFound     = "клиника не найдена"
	msgVetNotInClinic     = "врач не работает в этой клинике"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/slots
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, slotService.ErrInvalidInput):
			h.logger.Warn("POST /slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, slotService.ErrInvalidTimeRange):
			h.logger.Warn("POST /slots - Invalid time range: start=%s, end=%s", req.StartAt, req.EndAt)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, slotService.ErrClinicNotFound):
			h.logger.Warn("POST /slots - Clinic not found: clinic_id=%s", req.ClinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, slotService.ErrVetNotInClinic):
			h.logger.Warn("POST /slots - Vet not in clinic: clinic_id=%s", req.ClinicID)
			handlers.RespondBadRequest(w, msgVetNotInClinic)

		default:
			h.logger.Error("POST /slots - Failed to create slot: clinic_id=%s, error=%v", req.ClinicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots - Slot created: slot_id=%s, clinic_id=%s", result.ID, result.ClinicID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
