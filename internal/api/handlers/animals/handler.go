package animals

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	animalService "github.com/m04kA/SMC-VetBookingService/internal/service/animals"
	"github.com/m04kA/SMC-VetBookingService/internal/service/animals/models"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidAnimalID    = "некорректный ID животного"
	msgInvalidInput       = "некорректные данные животного"
	msgAnimalNotFound     = "животное не найдено"
	msgAccessDenied       = "нет доступа к животному"
	msgAnimalInUse        = "у животного есть записи на приём"
)

type Handler struct {
	service AnimalService
	logger  Logger
}

func NewHandler(service AnimalService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/animals
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.CreateAnimalRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /animals - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		h.respondError(w, "POST /animals", err)
		return
	}

	h.logger.Info("POST /animals - Animal created: animal_id=%s, owner_id=%s", result.ID, principal.UserID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// ListMine GET /api/animals/me
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.service.ListMine(r.Context(), principal)
	if err != nil {
		h.respondError(w, "GET /animals/me", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Get GET /api/animals/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	animalID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("GET /animals/{id} - Invalid animal ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAnimalID)
		return
	}

	result, err := h.service.GetByID(r.Context(), principal, animalID)
	if err != nil {
		h.respondError(w, "GET /animals/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Update PATCH /api/animals/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	animalID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("PATCH /animals/{id} - Invalid animal ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAnimalID)
		return
	}

	var req models.UpdateAnimalRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /animals/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), principal, animalID, &req)
	if err != nil {
		h.respondError(w, "PATCH /animals/{id}", err)
		return
	}

	h.logger.Info("PATCH /animals/{id} - Animal updated: animal_id=%s", animalID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/animals/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	animalID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("DELETE /animals/{id} - Invalid animal ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAnimalID)
		return
	}

	if err := h.service.Delete(r.Context(), principal, animalID); err != nil {
		h.respondError(w, "DELETE /animals/{id}", err)
		return
	}

	h.logger.Info("DELETE /animals/{id} - Animal deleted: animal_id=%s", animalID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, animalService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, animalService.ErrAnimalNotFound):
		h.logger.Warn("%s - Animal not found", route)
		handlers.RespondNotFound(w, msgAnimalNotFound)

	case errors.Is(err, animalService.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", route)
		handlers.RespondForbidden(w, msgAccessDenied)

	case errors.Is(err, animalService.ErrAnimalInUse):
		h.logger.Warn("%s - Animal in use", route)
		handlers.RespondConflict(w, msgAnimalInUse)

	default:
		h.logger.Error("%s - Internal error: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
