package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentRejected  AppointmentStatus = "REJECTED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
)

// TimeBlockingStatuses occupy the vet's calendar
var TimeBlockingStatuses = []AppointmentStatus{
	AppointmentPending,
	AppointmentConfirmed,
	AppointmentCompleted,
}

// ParseAppointmentStatus validates a status literal
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case AppointmentPending, AppointmentConfirmed, AppointmentRejected, AppointmentCancelled, AppointmentCompleted:
		return st, true
	default:
		return "", false
	}
}

// Appointment is a booked visit of an animal to a vet
type Appointment struct {
	ID           uuid.UUID
	ClinicID     uuid.UUID
	AnimalID     uuid.UUID
	VetID        uuid.UUID
	TypeID       *uuid.UUID
	Status       AppointmentStatus
	StartAt      time.Time
	EndAt        time.Time
	CreatedBy    uuid.UUID
	Notes        *string
	Report       *string
	RejectReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Interval returns [StartAt, EndAt)
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartAt, End: a.EndAt}
}

// BlocksTime returns true if the appointment occupies the vet's calendar
func (a *Appointment) BlocksTime() bool {
	return a.Status != AppointmentRejected && a.Status != AppointmentCancelled
}

// CanConfirm returns true if the appointment may be confirmed
func (a *Appointment) CanConfirm() bool {
	return a.Status == AppointmentPending
}

// CanReject returns true if the appointment may be rejected
func (a *Appointment) CanReject() bool {
	return a.Status == AppointmentPending || a.Status == AppointmentConfirmed
}

// CanComplete returns true if the appointment may be completed
func (a *Appointment) CanComplete() bool {
	return a.Status == AppointmentConfirmed
}

// CanCancel returns true if the appointment may be cancelled
func (a *Appointment) CanCancel() bool {
	return a.Status == AppointmentPending || a.Status == AppointmentConfirmed
}

// VisibleTo reports whether p may read the appointment and its documents
func (a *Appointment) VisibleTo(p Principal) bool {
	return a.CreatedBy == p.UserID || a.VetID == p.UserID || p.IsStaff()
}

// ManageableBy reports whether p may confirm or reject the appointment
func (a *Appointment) ManageableBy(p Principal) bool {
	return a.VetID == p.UserID || p.IsStaff()
}

// AppointmentChange carries the fields written by a status transition
type AppointmentChange struct {
	Status       AppointmentStatus
	Notes        *string
	Report       *string
	RejectReason *string
}

// AppointmentFilter selects appointments. From/To select appointments
// overlapping [From, To).
type AppointmentFilter struct {
	ClinicID  *uuid.UUID
	VetID     *uuid.UUID
	VetIDs    []uuid.UUID // any of these vets, in any clinic
	CreatedBy *uuid.UUID
	From      *time.Time
	To        *time.Time
	Statuses  []AppointmentStatus
}
