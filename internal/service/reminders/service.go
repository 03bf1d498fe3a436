package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/infra/lock"
	animalRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/animal"
	appointmentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/appointment"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	reminderRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/reminder"
	"github.com/m04kA/SMC-VetBookingService/internal/service/reminders/models"
)

// maxOffsetDays ограничение сдвига правила в днях
const maxOffsetDays = 365

// Статусы для метрик
const (
	metricSent    = "sent"
	metricFailed  = "failed"
	metricSkipped = "skipped"
)

// Service сервис планирования и отправки напоминаний
type Service struct {
	reminderRepo    ReminderRepository
	appointmentRepo AppointmentRepository
	animalRepo      AnimalRepository
	clinicRepo      ClinicRepository
	dispatcher      Dispatcher
	locker          Locker
	recorder        MetricsRecorder
	batchSize       int
	logger          Logger
}

// NewService создает новый экземпляр сервиса напоминаний
func NewService(
	reminderRepo ReminderRepository,
	appointmentRepo AppointmentRepository,
	animalRepo AnimalRepository,
	clinicRepo ClinicRepository,
	dispatcher Dispatcher,
	locker Locker,
	recorder MetricsRecorder,
	batchSize int,
	logger Logger,
) *Service {
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Service{
		reminderRepo:    reminderRepo,
		appointmentRepo: appointmentRepo,
		animalRepo:      animalRepo,
		clinicRepo:      clinicRepo,
		dispatcher:      dispatcher,
		locker:          locker,
		recorder:        recorder,
		batchSize:       batchSize,
		logger:          logger,
	}
}

// Plan создаёт по одному напоминанию на каждое активное правило приёма.
// Повторный вызов ничего не дублирует: уникальность по (rule, appointment, user) держит БД.
func (s *Service) Plan(ctx context.Context, appointmentID uuid.UUID) ([]*domain.ReminderInstance, error) {
	s.logger.Info("Plan: planning reminders for appointment=%s", appointmentID)

	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Plan: appointment=%s not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Plan: failed to get appointment=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: Plan - repository error: %v", ErrInternal, err)
	}

	payload, recipient, err := s.buildPayload(ctx, appointment)
	if err != nil {
		return nil, err
	}

	rules, err := s.reminderRepo.ListActiveRules(ctx, domain.ReminderScopeAppointment)
	if err != nil {
		s.logger.Error("Plan: failed to list rules: %v", err)
		return nil, fmt.Errorf("%w: Plan - repository error: %v", ErrInternal, err)
	}

	created := 0
	for _, rule := range rules {
		inserted, err := s.reminderRepo.CreateInstanceIfAbsent(ctx, &domain.ReminderInstance{
			ID:            uuid.New(),
			RuleID:        rule.ID,
			UserID:        recipient,
			AppointmentID: appointment.ID,
			SendAt:        rule.SendAt(appointment.StartAt),
			Status:        domain.ReminderScheduled,
			Payload:       payload,
		})
		if err != nil {
			s.logger.Error("Plan: failed to create instance for rule=%s appointment=%s: %v", rule.ID, appointmentID, err)
			return nil, fmt.Errorf("%w: Plan - repository error: %v", ErrInternal, err)
		}
		if inserted {
			created++
		}
	}

	instances, err := s.reminderRepo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Error("Plan: failed to list instances for appointment=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: Plan - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Plan: appointment=%s rules=%d created=%d total=%d", appointmentID, len(rules), created, len(instances))
	return instances, nil
}

// PlanAppointment то же, что Plan, но в DTO для HTTP слоя
func (s *Service) PlanAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.InstanceListResponse, error) {
	instances, err := s.Plan(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainInstanceList(instances), nil
}

// buildPayload снимок данных приёма на момент планирования и получатель напоминаний.
// Получатель - владелец животного; если животное не найдено, автор записи
func (s *Service) buildPayload(ctx context.Context, appointment *domain.Appointment) (json.RawMessage, uuid.UUID, error) {
	payload := domain.ReminderPayload{StartAt: appointment.StartAt}
	recipient := appointment.CreatedBy

	animal, err := s.animalRepo.GetByID(ctx, appointment.AnimalID)
	switch {
	case err == nil:
		payload.AnimalName = animal.Name
		recipient = animal.OwnerID
	case errors.Is(err, animalRepo.ErrAnimalNotFound):
		s.logger.Warn("buildPayload: animal=%s of appointment=%s not found", appointment.AnimalID, appointment.ID)
	default:
		s.logger.Error("buildPayload: failed to get animal=%s: %v", appointment.AnimalID, err)
		return nil, uuid.Nil, fmt.Errorf("%w: buildPayload - repository error: %v", ErrInternal, err)
	}

	clinic, err := s.clinicRepo.GetByID(ctx, appointment.ClinicID)
	switch {
	case err == nil:
		payload.ClinicName = clinic.Name
	case errors.Is(err, clinicRepo.ErrClinicNotFound):
		s.logger.Warn("buildPayload: clinic=%s of appointment=%s not found", appointment.ClinicID, appointment.ID)
	default:
		s.logger.Error("buildPayload: failed to get clinic=%s: %v", appointment.ClinicID, err)
		return nil, uuid.Nil, fmt.Errorf("%w: buildPayload - repository error: %v", ErrInternal, err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: buildPayload - marshal: %v", ErrInternal, err)
	}
	return raw, recipient, nil
}

// RunDue отправляет все наступившие напоминания.
// Ошибка доставки одного напоминания не мешает остальным и наружу не возвращается.
func (s *Service) RunDue(ctx context.Context, now time.Time) (*models.RunDueResponse, error) {
	s.logger.Info("RunDue: processing reminders due at %s", now.Format(time.RFC3339))

	var result *models.RunDueResponse
	run := func(ctx context.Context) error {
		var err error
		result, err = s.runDue(ctx, now)
		return err
	}

	err := s.locker.WithLock(ctx, lock.ReminderRunKey, run)
	switch {
	case err == nil:
	case errors.Is(err, lock.ErrLockNotAcquired):
		s.logger.Warn("RunDue: another run holds the lock")
		return nil, ErrRunInProgress
	case errors.Is(err, lock.ErrLockBackend):
		// Без Redis полагаемся на условную отметку статуса в БД
		s.logger.Warn("RunDue: lock backend unavailable, running without lock: %v", err)
		if err := run(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.logger.Info("RunDue: processed=%d sent=%d failed=%d", result.Processed, result.Sent, result.Failed)
	return result, nil
}

func (s *Service) runDue(ctx context.Context, now time.Time) (*models.RunDueResponse, error) {
	result := &models.RunDueResponse{}
	rules := make(map[uuid.UUID]*domain.ReminderRule)
	seen := make(map[uuid.UUID]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return result, nil
		}

		batch, err := s.reminderRepo.FetchDue(ctx, now, s.batchSize)
		if err != nil {
			s.logger.Error("RunDue: failed to fetch due reminders: %v", err)
			return nil, fmt.Errorf("%w: RunDue - repository error: %v", ErrInternal, err)
		}

		fresh := 0
		for _, inst := range batch {
			// Экземпляр, который не удалось пометить, вернётся в следующей выборке
			if _, ok := seen[inst.ID]; ok {
				continue
			}
			seen[inst.ID] = struct{}{}
			fresh++

			result.Processed++
			switch s.processOne(ctx, rules, inst, now) {
			case domain.ReminderSent:
				result.Sent++
			case domain.ReminderFailed:
				result.Failed++
			}
		}

		if len(batch) < s.batchSize || fresh == 0 {
			return result, nil
		}
	}
}

// processOne доставляет одно напоминание и фиксирует итог
func (s *Service) processOne(
	ctx context.Context,
	rules map[uuid.UUID]*domain.ReminderRule,
	inst *domain.ReminderInstance,
	now time.Time,
) domain.ReminderStatus {
	rule, err := s.rule(ctx, rules, inst.RuleID)
	if err == nil {
		err = s.dispatcher.DispatchReminder(ctx, rule, inst)
	}

	if err != nil {
		s.logger.Warn("RunDue: reminder=%s failed: %v", inst.ID, err)
		if markErr := s.reminderRepo.MarkFailed(ctx, inst.ID, truncate(err.Error(), domain.MaxReasonLength)); markErr != nil {
			return s.markError(inst.ID, markErr)
		}
		s.recorder.ReminderProcessed(metricFailed)
		return domain.ReminderFailed
	}

	if markErr := s.reminderRepo.MarkSent(ctx, inst.ID, now); markErr != nil {
		return s.markError(inst.ID, markErr)
	}
	s.recorder.ReminderProcessed(metricSent)
	return domain.ReminderSent
}

func (s *Service) markError(id uuid.UUID, err error) domain.ReminderStatus {
	if errors.Is(err, reminderRepo.ErrInstanceNotScheduled) {
		s.logger.Warn("RunDue: reminder=%s already processed by another run", id)
	} else {
		s.logger.Error("RunDue: failed to update reminder=%s: %v", id, err)
	}
	s.recorder.ReminderProcessed(metricSkipped)
	return domain.ReminderScheduled
}

// rule достаёт правило с кэшированием в пределах одного запуска
func (s *Service) rule(ctx context.Context, cache map[uuid.UUID]*domain.ReminderRule, id uuid.UUID) (*domain.ReminderRule, error) {
	if rule, ok := cache[id]; ok {
		return rule, nil
	}
	rule, err := s.reminderRepo.GetRule(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load rule %s: %w", id, err)
	}
	cache[id] = rule
	return rule, nil
}

// CancelForAppointment отменяет ещё не отправленные напоминания приёма
func (s *Service) CancelForAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	cancelled, err := s.reminderRepo.CancelScheduled(ctx, appointmentID)
	if err != nil {
		s.logger.Error("CancelForAppointment: appointment=%s: %v", appointmentID, err)
		return fmt.Errorf("%w: CancelForAppointment - repository error: %v", ErrInternal, err)
	}
	s.logger.Info("CancelForAppointment: cancelled %d reminders of appointment=%s", cancelled, appointmentID)
	return nil
}

// CreateRule создаёт правило напоминаний
func (s *Service) CreateRule(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("CreateRule: name=%q offset=%d", req.Name, req.OffsetDays)

	rule, err := validateRule(req)
	if err != nil {
		s.logger.Warn("CreateRule: %v", err)
		return nil, err
	}

	created, err := s.reminderRepo.CreateRule(ctx, rule)
	if err != nil {
		s.logger.Error("CreateRule: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateRule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateRule: created rule=%s", created.ID)
	return models.FromDomainRule(created), nil
}

// ListRules возвращает все правила
func (s *Service) ListRules(ctx context.Context) (*models.RuleListResponse, error) {
	rules, err := s.reminderRepo.ListRules(ctx)
	if err != nil {
		s.logger.Error("ListRules: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListRules - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainRuleList(rules), nil
}

func validateRule(req *models.CreateRuleRequest) (*domain.ReminderRule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len([]rune(name)) > domain.MaxNameLength {
		return nil, fmt.Errorf("%w: name is required and must be at most %d characters", ErrInvalidInput, domain.MaxNameLength)
	}

	scope := domain.ReminderScope(strings.ToUpper(strings.TrimSpace(req.Scope)))
	if scope == "" {
		scope = domain.ReminderScopeAppointment
	}
	if scope != domain.ReminderScopeAppointment {
		return nil, fmt.Errorf("%w: unsupported scope %q", ErrInvalidInput, req.Scope)
	}

	if req.OffsetDays < -maxOffsetDays || req.OffsetDays > maxOffsetDays {
		return nil, fmt.Errorf("%w: offsetDays must be within ±%d", ErrInvalidInput, maxOffsetDays)
	}
	if !req.SendEmail && !req.SendInApp {
		return nil, fmt.Errorf("%w: at least one channel is required", ErrInvalidInput)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &domain.ReminderRule{
		ID:         uuid.New(),
		Name:       name,
		Scope:      scope,
		OffsetDays: req.OffsetDays,
		SendEmail:  req.SendEmail,
		SendInApp:  req.SendInApp,
		IsActive:   active,
	}, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
