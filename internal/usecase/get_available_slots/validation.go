package get_available_slots

import (
	"fmt"

	"github.com/google/uuid"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClinicID == uuid.Nil {
		return fmt.Errorf("%w: clinicId is required", ErrInvalidInput)
	}

	if req.VetID != nil && *req.VetID == uuid.Nil {
		return fmt.Errorf("%w: vetId must be a valid uuid", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}
