package reminders

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	reminderService "github.com/m04kA/SMC-VetBookingService/internal/service/reminders"
	"github.com/m04kA/SMC-VetBookingService/internal/service/reminders/models"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidAppointmentID = "некорректный ID приёма"
	msgInvalidInput         = "некорректные данные правила"
	msgAppointmentNotFound  = "приём не найден"
	msgRunInProgress        = "обработка напоминаний уже выполняется"
)

type Handler struct {
	service ReminderService
	logger  Logger
	now     func() time.Time
}

func NewHandler(service ReminderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// Plan POST /api/reminders/plan/appointment/{id}
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("POST /reminders/plan/appointment/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.service.PlanAppointment(r.Context(), appointmentID)
	if err != nil {
		switch {
		case errors.Is(err, reminderService.ErrAppointmentNotFound):
			h.logger.Warn("POST /reminders/plan/appointment/{id} - Appointment not found: appointment_id=%s", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		default:
			h.logger.Error("POST /reminders/plan/appointment/{id} - Failed to plan: appointment_id=%s, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reminders/plan/appointment/{id} - Reminders planned: appointment_id=%s, count=%d",
		appointmentID, len(result.Reminders))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// RunDue POST /api/reminders/run-due
func (h *Handler) RunDue(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RunDue(r.Context(), h.now())
	if err != nil {
		if errors.Is(err, reminderService.ErrRunInProgress) {
			h.logger.Warn("POST /reminders/run-due - Run already in progress")
			handlers.RespondConflict(w, msgRunInProgress)
			return
		}
		h.logger.Error("POST /reminders/run-due - Failed to run: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /reminders/run-due - Processed=%d, sent=%d, failed=%d", result.Processed, result.Sent, result.Failed)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// ListRules GET /api/reminders/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListRules(r.Context())
	if err != nil {
		h.logger.Error("GET /reminders/rules - Failed to list rules: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// CreateRule POST /api/reminders/rules
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reminders/rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateRule(r.Context(), &req)
	if err != nil {
		if errors.Is(err, reminderService.ErrInvalidInput) {
			h.logger.Warn("POST /reminders/rules - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)
			return
		}
		h.logger.Error("POST /reminders/rules - Failed to create rule: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /reminders/rules - Rule created: rule_id=%s, offset_days=%d", result.ID, result.OffsetDays)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
