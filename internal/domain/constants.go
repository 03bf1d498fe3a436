package domain

import "time"

// Appointment defaults
const (
	AppointmentDuration = 30 * time.Minute
)

// Validation limits
const (
	MaxNotesLength    = 1000
	MaxReasonLength   = 1000
	MinPasswordLength = 8
	MaxNameLength     = 200
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
