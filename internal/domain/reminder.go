package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReminderScope is the entity a rule is planned against
type ReminderScope string

const (
	ReminderScopeAppointment ReminderScope = "APPOINTMENT"
)

// ReminderStatus represents the state of a planned reminder
type ReminderStatus string

const (
	ReminderScheduled ReminderStatus = "SCHEDULED"
	ReminderSent      ReminderStatus = "SENT"
	ReminderFailed    ReminderStatus = "FAILED"
	ReminderCancelled ReminderStatus = "CANCELLED"
)

// ReminderRule is static reminder policy
type ReminderRule struct {
	ID         uuid.UUID
	Name       string
	Scope      ReminderScope
	OffsetDays int // signed: -1 = the day before
	SendEmail  bool
	SendInApp  bool
	IsActive   bool
	CreatedAt  time.Time
}

// SendAt computes the moment a reminder for an event starting at start is due
func (r *ReminderRule) SendAt(start time.Time) time.Time {
	return start.AddDate(0, 0, r.OffsetDays)
}

// ReminderInstance is a concrete scheduled occurrence of a rule.
// (RuleID, AppointmentID, UserID) is its natural key.
type ReminderInstance struct {
	ID            uuid.UUID
	RuleID        uuid.UUID
	UserID        uuid.UUID
	AppointmentID uuid.UUID
	SendAt        time.Time
	Status        ReminderStatus
	Payload       json.RawMessage
	LastError     *string
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReminderPayload is the snapshot stored with an instance at planning time
type ReminderPayload struct {
	AnimalName string    `json:"animalName"`
	ClinicName string    `json:"clinicName"`
	StartAt    time.Time `json:"startAt"`
}
