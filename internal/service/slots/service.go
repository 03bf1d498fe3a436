package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	"github.com/m04kA/SMC-VetBookingService/internal/service/slots/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/ptr"
)

// maxSlotDuration слот не может быть длиннее суток
const maxSlotDuration = 24 * time.Hour

// Service сервис ведения сетки слотов
type Service struct {
	slotRepo   SlotRepository
	clinicRepo ClinicRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(slotRepo SlotRepository, clinicRepo ClinicRepository, logger Logger) *Service {
	return &Service{
		slotRepo:   slotRepo,
		clinicRepo: clinicRepo,
		logger:     logger,
	}
}

// Create добавляет ячейку в сетку клиники. Слоты не генерируются из часов работы.
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("Create: clinic=%s vet=%v start=%s", req.ClinicID, req.VetID, req.StartAt.Format(time.RFC3339))

	if req.ClinicID == uuid.Nil {
		return nil, fmt.Errorf("%w: clinicId is required", ErrInvalidInput)
	}
	interval := domain.Interval{Start: req.StartAt, End: req.EndAt}
	if !interval.Valid() {
		s.logger.Warn("Create: invalid interval %s - %s", req.StartAt, req.EndAt)
		return nil, fmt.Errorf("%w: startAt must be before endAt", ErrInvalidTimeRange)
	}
	if interval.Duration() > maxSlotDuration {
		return nil, fmt.Errorf("%w: slot must not exceed 24 hours", ErrInvalidTimeRange)
	}

	if _, err := s.clinicRepo.GetByID(ctx, req.ClinicID); err != nil {
		if errors.Is(err, clinicRepo.ErrClinicNotFound) {
			s.logger.Warn("Create: clinic=%s not found", req.ClinicID)
			return nil, ErrClinicNotFound
		}
		s.logger.Error("Create: failed to get clinic=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	if req.VetID != nil {
		isVet, err := s.clinicRepo.IsVetOfClinic(ctx, req.ClinicID, *req.VetID)
		if err != nil {
			s.logger.Error("Create: failed to check vet=%s: %v", *req.VetID, err)
			return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		if !isVet {
			s.logger.Warn("Create: vet=%s does not work in clinic=%s", *req.VetID, req.ClinicID)
			return nil, ErrVetNotInClinic
		}
	}

	slot, err := s.slotRepo.Create(ctx, &domain.TimeSlot{
		ID:          uuid.New(),
		ClinicID:    req.ClinicID,
		VetID:       req.VetID,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		IsAvailable: ptr.Deref(req.IsAvailable, true),
	})
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: slot=%s created", slot.ID)
	return models.FromDomainSlot(slot), nil
}
