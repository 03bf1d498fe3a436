package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	createAppointment "github.com/m04kA/SMC-VetBookingService/internal/usecase/create_appointment"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные приёма"
	msgClinicNotFound     = "клиника не найдена"
	msgAnimalNotFound     = "животное не найдено"
	msgVetNotInClinic     = "врач не работает в этой клинике"
	msgForbidden          = "нет прав на запись этого животного"
	msgStartInPast        = "нельзя записаться на прошедшее время"
	msgSlotAlreadyBooked  = "выбранное время уже занято"
	msgVetUnavailable     = "врач недоступен в выбранное время"
	msgBookingInProgress  = "это время прямо сейчас бронируется, повторите попытку"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(principal))
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: user_id=%s, error=%v", principal.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createAppointment.ErrStartInPast):
			h.logger.Warn("POST /appointments - Start in past: user_id=%s, start=%s", principal.UserID, req.StartAt)
			handlers.RespondBadRequest(w, msgStartInPast)

		case errors.Is(err, createAppointment.ErrClinicNotFound):
			h.logger.Warn("POST /appointments - Clinic not found: clinic_id=%s", req.ClinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, createAppointment.ErrAnimalNotFound):
			h.logger.Warn("POST /appointments - Animal not found: animal_id=%s", req.AnimalID)
			handlers.RespondNotFound(w, msgAnimalNotFound)

		case errors.Is(err, createAppointment.ErrVetNotInClinic):
			h.logger.Warn("POST /appointments - Vet not in clinic: clinic_id=%s, vet_id=%s", req.ClinicID, req.VetID)
			handlers.RespondBadRequest(w, msgVetNotInClinic)

		case errors.Is(err, createAppointment.ErrForbidden):
			h.logger.Warn("POST /appointments - Forbidden: user_id=%s, animal_id=%s", principal.UserID, req.AnimalID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createAppointment.ErrSlotAlreadyBooked):
			h.logger.Warn("POST /appointments - Slot already booked: vet_id=%s, start=%s", req.VetID, req.StartAt)
			handlers.RespondConflict(w, msgSlotAlreadyBooked)

		case errors.Is(err, createAppointment.ErrVetUnavailable):
			h.logger.Warn("POST /appointments - Vet unavailable: vet_id=%s, start=%s", req.VetID, req.StartAt)
			handlers.RespondConflict(w, msgVetUnavailable)

		case errors.Is(err, createAppointment.ErrBookingInProgress):
			h.logger.Warn("POST /appointments - Booking in progress: vet_id=%s, start=%s", req.VetID, req.StartAt)
			handlers.RespondConflict(w, msgBookingInProgress)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: user_id=%s, clinic_id=%s, error=%v",
				principal.UserID, req.ClinicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%s, vet_id=%s, user_id=%s",
		result.ID, result.VetID, principal.UserID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
