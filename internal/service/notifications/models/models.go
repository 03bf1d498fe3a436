package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Request модели

// ListRequest запрос списка уведомлений пользователя
type ListRequest struct {
	UserID     uuid.UUID `json:"userId"`
	OnlyUnread bool      `json:"onlyUnread,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// Response модели

// NotificationResponse уведомление пользователя
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Channel   string     `json:"channel"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Status    string     `json:"status"`
	Error     *string    `json:"error,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NotificationListResponse список уведомлений
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// Методы конвертации

// FromDomainNotification конвертирует domain модель в DTO
func FromDomainNotification(n *domain.Notification) *NotificationResponse {
	if n == nil {
		return nil
	}
	return &NotificationResponse{
		ID:        n.ID,
		Channel:   string(n.Channel),
		Subject:   n.Subject,
		Body:      n.Body,
		Status:    string(n.Status),
		Error:     n.Error,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// FromDomainNotificationList конвертирует список уведомлений в DTO
func FromDomainNotificationList(list []*domain.Notification) *NotificationListResponse {
	resp := &NotificationListResponse{Notifications: make([]NotificationResponse, 0, len(list))}
	for _, n := range list {
		if nr := FromDomainNotification(n); nr != nil {
			resp.Notifications = append(resp.Notifications, *nr)
		}
	}
	return resp
}
