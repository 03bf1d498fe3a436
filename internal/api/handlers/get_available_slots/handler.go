package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-VetBookingService/internal/usecase/get_available_slots"
)

const (
	msgMissingClinicID = "ID клиники обязателен"
	msgInvalidClinicID = "некорректный ID клиники"
	msgInvalidVetID    = "некорректный ID врача"
	msgMissingDate     = "дата обязательна"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput    = "некорректные параметры запроса"
	msgClinicNotFound  = "клиника не найдена"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/slots
// Query params: clinicId (required), date (required, YYYY-MM-DD), vetId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	clinicIDStr := query.Get("clinicId")
	if clinicIDStr == "" {
		h.logger.Warn("GET /slots - Missing clinic ID")
		handlers.RespondBadRequest(w, msgMissingClinicID)
		return
	}
	clinicID, err := uuid.Parse(clinicIDStr)
	if err != nil {
		h.logger.Warn("GET /slots - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClinicID)
		return
	}

	vetID, err := handlers.QueryUUID(r, "vetId")
	if err != nil {
		h.logger.Warn("GET /slots - Invalid vet ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVetID)
		return
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(clinicID, vetID, dateStr)
	if err != nil {
		h.logger.Warn("GET /slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrClinicNotFound):
			h.logger.Warn("GET /slots - Clinic not found: clinic_id=%s", clinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /slots - Invalid input: clinic_id=%s, error=%v", clinicID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /slots - Failed to get slots: clinic_id=%s, date=%s, error=%v", clinicID, dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots - Slots retrieved successfully: clinic_id=%s, date=%s, slots_count=%d",
		clinicID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
