package agenda

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	agendaRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/agenda"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	"github.com/m04kA/SMC-VetBookingService/internal/service/agenda/models"
)

const (
	defaultAgendaDays = 7
	maxAgendaDays     = 31
	maxBlockDuration  = 31 * 24 * time.Hour
)

// Service сервис расписания врача
type Service struct {
	agendaRepo      AgendaRepository
	appointmentRepo AppointmentRepository
	clinicRepo      ClinicRepository
	location        *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	agendaRepo AgendaRepository,
	appointmentRepo AppointmentRepository,
	clinicRepo ClinicRepository,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		agendaRepo:      agendaRepo,
		appointmentRepo: appointmentRepo,
		clinicRepo:      clinicRepo,
		location:        location,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetMine возвращает приёмы врача, занимающие время, и его блоки за период
func (s *Service) GetMine(ctx context.Context, p domain.Principal, req *models.GetMineRequest) (*models.AgendaResponse, error) {
	from, to, err := s.resolveRange(req)
	if err != nil {
		s.logger.Warn("GetMine: vet=%s: %v", p.UserID, err)
		return nil, err
	}
	s.logger.Info("GetMine: vet=%s from=%s to=%s", p.UserID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{
		VetID:    &p.UserID,
		From:     &from,
		To:       &to,
		Statuses: domain.TimeBlockingStatuses,
	})
	if err != nil {
		s.logger.Error("GetMine: failed to list appointments for vet=%s: %v", p.UserID, err)
		return nil, fmt.Errorf("%w: GetMine - repository error: %v", ErrInternal, err)
	}

	blocks, err := s.agendaRepo.List(ctx, domain.AgendaBlockFilter{VetID: &p.UserID, From: from, To: to})
	if err != nil {
		s.logger.Error("GetMine: failed to list blocks for vet=%s: %v", p.UserID, err)
		return nil, fmt.Errorf("%w: GetMine - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAgenda(from, to, appointments, blocks), nil
}

// resolveRange подставляет период по умолчанию: сегодня и 7 дней вперёд
func (s *Service) resolveRange(req *models.GetMineRequest) (time.Time, time.Time, error) {
	var from time.Time
	if req.From != nil {
		from = *req.From
	} else {
		from = domain.DayBounds(s.timeProvider.Now().In(s.location), s.location).Start
	}

	to := from.AddDate(0, 0, defaultAgendaDays)
	if req.To != nil {
		to = *req.To
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be before to", ErrInvalidTimeRange)
	}
	if to.After(from.AddDate(0, 0, maxAgendaDays)) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range must not exceed %d days", ErrInvalidTimeRange, maxAgendaDays)
	}
	return from, to, nil
}

// CreateBlock создаёт блок недоступности для самого врача
func (s *Service) CreateBlock(ctx context.Context, p domain.Principal, req *models.CreateBlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("CreateBlock: vet=%s clinic=%s", p.UserID, req.ClinicID)

	if req.ClinicID == uuid.Nil {
		return nil, fmt.Errorf("%w: clinicId is required", ErrInvalidInput)
	}
	interval := domain.Interval{Start: req.StartAt, End: req.EndAt}
	if !interval.Valid() {
		return nil, fmt.Errorf("%w: startAt must be before endAt", ErrInvalidTimeRange)
	}
	if interval.Duration() > maxBlockDuration {
		return nil, fmt.Errorf("%w: block must not exceed 31 days", ErrInvalidTimeRange)
	}

	var reason *string
	if req.Reason != nil {
		trimmed := strings.TrimSpace(*req.Reason)
		if len([]rune(trimmed)) > domain.MaxReasonLength {
			return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxReasonLength)
		}
		if trimmed != "" {
			reason = &trimmed
		}
	}

	if _, err := s.clinicRepo.GetByID(ctx, req.ClinicID); err != nil {
		if errors.Is(err, clinicRepo.ErrClinicNotFound) {
			s.logger.Warn("CreateBlock: clinic=%s not found", req.ClinicID)
			return nil, ErrClinicNotFound
		}
		s.logger.Error("CreateBlock: failed to get clinic=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: CreateBlock - repository error: %v", ErrInternal, err)
	}

	isVet, err := s.clinicRepo.IsVetOfClinic(ctx, req.ClinicID, p.UserID)
	if err != nil {
		s.logger.Error("CreateBlock: failed to check membership of vet=%s: %v", p.UserID, err)
		return nil, fmt.Errorf("%w: CreateBlock - repository error: %v", ErrInternal, err)
	}
	if !isVet {
		s.logger.Warn("CreateBlock: vet=%s does not work in clinic=%s", p.UserID, req.ClinicID)
		return nil, ErrVetNotInClinic
	}

	block, err := s.agendaRepo.Create(ctx, &domain.AgendaBlock{
		ID:       uuid.New(),
		ClinicID: req.ClinicID,
		VetID:    p.UserID,
		StartAt:  req.StartAt,
		EndAt:    req.EndAt,
		Reason:   reason,
	})
	if err != nil {
		s.logger.Error("CreateBlock: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateBlock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateBlock: created block=%s for vet=%s", block.ID, p.UserID)
	return models.FromDomainBlock(block), nil
}

// DeleteBlock удаляет блок. Разрешено врачу-владельцу блока и администраторам.
func (s *Service) DeleteBlock(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	s.logger.Info("DeleteBlock: block=%s by user=%s", id, p.UserID)

	block, err := s.agendaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, agendaRepo.ErrBlockNotFound) {
			s.logger.Warn("DeleteBlock: block=%s not found", id)
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: repository error for block=%s: %v", id, err)
		return fmt.Errorf("%w: DeleteBlock - repository error: %v", ErrInternal, err)
	}

	if block.VetID != p.UserID && !p.Roles.HasAny(domain.RoleClinicAdmin, domain.RoleAdmin) {
		s.logger.Warn("DeleteBlock: access denied for user=%s to block=%s", p.UserID, id)
		return ErrAccessDenied
	}

	if err := s.agendaRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, agendaRepo.ErrBlockNotFound) {
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: repository error for block=%s: %v", id, err)
		return fmt.Errorf("%w: DeleteBlock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteBlock: block=%s deleted", id)
	return nil
}
