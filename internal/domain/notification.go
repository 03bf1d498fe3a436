package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationChannel is a delivery channel
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "EMAIL"
	ChannelInApp NotificationChannel = "IN_APP"
)

// NotificationStatus is the delivery outcome
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "SENT"
	NotificationFailed NotificationStatus = "FAILED"
)

// Notification is a delivered (or failed) message to a user
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Channel   NotificationChannel
	Subject   string
	Body      string
	Status    NotificationStatus
	Error     *string
	ReadAt    *time.Time
	CreatedAt time.Time
}
