package create_appointment

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Principal.UserID == uuid.Nil {
		return fmt.Errorf("%w: principal is required", ErrInvalidInput)
	}

	if req.ClinicID == uuid.Nil {
		return fmt.Errorf("%w: clinicId is required", ErrInvalidInput)
	}

	if req.AnimalID == uuid.Nil {
		return fmt.Errorf("%w: animalId is required", ErrInvalidInput)
	}

	if req.VetID == uuid.Nil {
		return fmt.Errorf("%w: vetUserId is required", ErrInvalidInput)
	}

	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: startsAt is required", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateStart запрещает запись на прошедшее время
func validateStart(start, now time.Time) error {
	if start.Before(now) {
		return ErrStartInPast
	}
	return nil
}

// hasConflict проверяет пересечение [start, end) с занимающими время приёмами врача
func hasConflict(requested domain.Interval, vetID uuid.UUID, appointments []*domain.Appointment) bool {
	for _, a := range appointments {
		if a.VetID != vetID || !a.BlocksTime() {
			continue
		}
		if requested.Overlaps(a.Interval()) {
			return true
		}
	}
	return false
}

// isBlocked проверяет пересечение [start, end) с блоками недоступности врача
func isBlocked(requested domain.Interval, vetID uuid.UUID, blocks []*domain.AgendaBlock) bool {
	for _, b := range blocks {
		if b.VetID == vetID && requested.Overlaps(b.Interval()) {
			return true
		}
	}
	return false
}
