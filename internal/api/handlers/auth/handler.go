package auth

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	authService "github.com/m04kA/SMC-VetBookingService/internal/service/auth"
	"github.com/m04kA/SMC-VetBookingService/internal/service/auth/models"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные пользователя"
	msgInvalidUserID      = "некорректный ID пользователя"
	msgEmailTaken         = "пользователь с таким email уже зарегистрирован"
	msgInvalidCredentials = "неверный email или пароль"
	msgWrongPassword      = "неверный текущий пароль"
	msgUserNotFound       = "пользователь не найден"
)

type Handler struct {
	service AuthService
	logger  Logger
}

func NewHandler(service AuthService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /auth/register - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, authService.ErrInvalidInput):
			h.logger.Warn("POST /auth/register - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, authService.ErrEmailTaken):
			h.logger.Warn("POST /auth/register - Email taken: email=%s", req.Email)
			handlers.RespondConflict(w, msgEmailTaken)

		default:
			h.logger.Error("POST /auth/register - Failed to register: email=%s, error=%v", req.Email, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /auth/register - User registered: user_id=%s", result.User.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Login POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /auth/login - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			h.logger.Warn("POST /auth/login - Invalid credentials: email=%s", req.Email)
			handlers.RespondUnauthorized(w, msgInvalidCredentials)
			return
		}
		h.logger.Error("POST /auth/login - Failed to login: email=%s, error=%v", req.Email, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Profile GET /api/auth/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.service.Profile(r.Context(), principal.UserID)
	if err != nil {
		h.respondUserError(w, "GET /auth/profile", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// UpdateProfile PATCH /api/auth/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.UpdateProfileRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /auth/profile - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateProfile(r.Context(), principal.UserID, &req)
	if err != nil {
		h.respondUserError(w, "PATCH /auth/profile", err)
		return
	}

	h.logger.Info("PATCH /auth/profile - Profile updated: user_id=%s", principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// ChangePassword PATCH /api/auth/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /auth/password - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.ChangePassword(r.Context(), principal.UserID, &req); err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			h.logger.Warn("PATCH /auth/password - Wrong current password: user_id=%s", principal.UserID)
			handlers.RespondUnauthorized(w, msgWrongPassword)
			return
		}
		h.respondUserError(w, "PATCH /auth/password", err)
		return
	}

	h.logger.Info("PATCH /auth/password - Password changed: user_id=%s", principal.UserID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// GrantRole POST /api/users/{id}/roles
func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("POST /users/{id}/roles - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	var req models.GrantRoleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /users/{id}/roles - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.GrantRole(r.Context(), userID, &req)
	if err != nil {
		h.respondUserError(w, "POST /users/{id}/roles", err)
		return
	}

	h.logger.Info("POST /users/{id}/roles - Role granted: user_id=%s, role=%s", userID, req.Role)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondUserError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, authService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, authService.ErrUserNotFound):
		h.logger.Warn("%s - User not found", route)
		handlers.RespondNotFound(w, msgUserNotFound)

	default:
		h.logger.Error("%s - Internal error: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
