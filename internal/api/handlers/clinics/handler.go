package clinics

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	clinicService "github.com/m04kA/SMC-VetBookingService/internal/service/clinics"
	"github.com/m04kA/SMC-VetBookingService/internal/service/clinics/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidClinicID    = "некорректный ID клиники"
	msgInvalidInput       = "некорректные данные клиники"
	msgClinicNotFound     = "клиника не найдена"
	msgUserNotFound       = "пользователь не найден"
	msgNotAVet            = "пользователь не является врачом"
	msgVetAlreadyAdded    = "врач уже работает в этой клинике"
)

type Handler struct {
	service ClinicService
	logger  Logger
}

func NewHandler(service ClinicService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/clinics?city=&q=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := &models.ListRequest{
		City:  handlers.QueryString(r, "city"),
		Query: handlers.QueryString(r, "q"),
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("GET /clinics - Failed to list clinics: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Get GET /api/clinics/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	clinicID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("GET /clinics/{id} - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClinicID)
		return
	}

	result, err := h.service.GetByID(r.Context(), clinicID)
	if err != nil {
		h.respondError(w, "GET /clinics/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ListVets GET /api/clinics/{id}/vets
func (h *Handler) ListVets(w http.ResponseWriter, r *http.Request) {
	clinicID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/vets - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClinicID)
		return
	}

	result, err := h.service.ListVets(r.Context(), clinicID)
	if err != nil {
		h.respondError(w, "GET /clinics/{id}/vets", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create POST /api/clinics
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClinicRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /clinics - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /clinics", err)
		return
	}

	h.logger.Info("POST /clinics - Clinic created: clinic_id=%s", result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// AddVet POST /api/clinics/{id}/vets
func (h *Handler) AddVet(w http.ResponseWriter, r *http.Request) {
	clinicID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("POST /clinics/{id}/vets - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClinicID)
		return
	}

	var req models.AddVetRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /clinics/{id}/vets - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AddVet(r.Context(), clinicID, &req)
	if err != nil {
		h.respondError(w, "POST /clinics/{id}/vets", err)
		return
	}

	h.logger.Info("POST /clinics/{id}/vets - Vet added: clinic_id=%s, vet_id=%s", clinicID, req.VetID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, clinicService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, clinicService.ErrClinicNotFound):
		h.logger.Warn("%s - Clinic not found", route)
		handlers.RespondNotFound(w, msgClinicNotFound)

	case errors.Is(err, clinicService.ErrUserNotFound):
		h.logger.Warn("%s - User not found", route)
		handlers.RespondNotFound(w, msgUserNotFound)

	case errors.Is(err, clinicService.ErrNotAVet):
		h.logger.Warn("%s - User is not a vet", route)
		handlers.RespondBadRequest(w, msgNotAVet)

	case errors.Is(err, clinicService.ErrVetAlreadyAdded):
		h.logger.Warn("%s - Vet already added", route)
		handlers.RespondConflict(w, msgVetAlreadyAdded)

	default:
		h.logger.Error("%s - Internal error: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
