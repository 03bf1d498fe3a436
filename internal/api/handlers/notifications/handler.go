package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-VetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	notificationService "github.com/m04kA/SMC-VetBookingService/internal/service/notifications"
	"github.com/m04kA/SMC-VetBookingService/internal/service/notifications/models"
)

const (
	msgUnauthorized          = "требуется авторизация"
	msgInvalidNotificationID = "некорректный ID уведомления"
	msgInvalidLimit          = "некорректный limit"
	msgInvalidUnread         = "некорректный параметр unread"
	msgNotificationNotFound  = "уведомление не найдено"
)

type Handler struct {
	service NotificationService
	logger  Logger
}

func NewHandler(service NotificationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ListMine GET /api/notifications/me?unread=&limit=
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	req := &models.ListRequest{UserID: principal.UserID}

	if raw := r.URL.Query().Get("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /notifications/me - Invalid unread: %v", err)
			handlers.RespondBadRequest(w, msgInvalidUnread)
			return
		}
		req.OnlyUnread = unread
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.logger.Warn("GET /notifications/me - Invalid limit: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
		req.Limit = limit
	}

	result, err := h.service.ListMine(r.Context(), req)
	if err != nil {
		h.logger.Error("GET /notifications/me - Failed to list notifications: user_id=%s, error=%v", principal.UserID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// MarkRead PATCH /api/notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("PATCH /notifications/{id}/read - Invalid notification ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidNotificationID)
		return
	}

	result, err := h.service.MarkRead(r.Context(), id, principal.UserID)
	if err != nil {
		if errors.Is(err, notificationService.ErrNotificationNotFound) {
			h.logger.Warn("PATCH /notifications/{id}/read - Notification not found: id=%s, user_id=%s", id, principal.UserID)
			handlers.RespondNotFound(w, msgNotificationNotFound)
			return
		}
		h.logger.Error("PATCH /notifications/{id}/read - Failed to mark read: id=%s, error=%v", id, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
