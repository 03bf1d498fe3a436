package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/infra/lock"
	animalRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/animal"
	appointmentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/appointment"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	"github.com/m04kA/SMC-VetBookingService/pkg/txmanager"
)

// UseCase use case для записи животного к врачу
type UseCase struct {
	appointmentRepo AppointmentRepository
	clinicRepo      ClinicRepository
	animalRepo      AnimalRepository
	agendaRepo      AgendaRepository
	txManager       TransactionManager
	locker          Locker
	planner         ReminderPlanner
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	clinicRepo ClinicRepository,
	animalRepo AnimalRepository,
	agendaRepo AgendaRepository,
	txManager TransactionManager,
	locker Locker,
	planner ReminderPlanner,
	notifier Notifier,
	logger Logger,
) *UseCase {
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		clinicRepo:      clinicRepo,
		animalRepo:      animalRepo,
		agendaRepo:      agendaRepo,
		txManager:       txManager,
		locker:          locker,
		planner:         planner,
		notifier:        notifier,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания приёма
// Проверка пересечений и вставка выполняются в сериализуемой транзакции под блокировкой врач+время
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateAppointment: user=%s, clinic=%s, vet=%s, animal=%s, start=%s",
		req.Principal.UserID, req.ClinicID, req.VetID, req.AnimalID, req.StartAt.Format(time.RFC3339))

	// 2. Время начала не в прошлом
	if err := validateStart(req.StartAt, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("CreateAppointment: start %s is in the past", req.StartAt)
		return nil, err
	}

	// 3. Животное существует и принадлежит пользователю (персонал клиники может записывать любое)
	animal, err := uc.animalRepo.GetByID(ctx, req.AnimalID)
	if err != nil {
		if errors.Is(err, animalRepo.ErrAnimalNotFound) {
			uc.logger.Warn("CreateAppointment: animal id=%s not found", req.AnimalID)
			return nil, ErrAnimalNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get animal id=%s: %v", req.AnimalID, err)
		return nil, fmt.Errorf("%w: failed to get animal: %v", ErrInternal, err)
	}
	if animal.OwnerID != req.Principal.UserID && !req.Principal.IsStaff() {
		uc.logger.Warn("CreateAppointment: user=%s is not the owner of animal id=%s", req.Principal.UserID, req.AnimalID)
		return nil, ErrForbidden
	}

	// 4. Клиника существует и врач в ней работает
	if _, err := uc.clinicRepo.GetByID(ctx, req.ClinicID); err != nil {
		if errors.Is(err, clinicRepo.ErrClinicNotFound) {
			uc.logger.Warn("CreateAppointment: clinic id=%s not found", req.ClinicID)
			return nil, ErrClinicNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get clinic id=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: failed to get clinic: %v", ErrInternal, err)
	}

	isVet, err := uc.clinicRepo.IsVetOfClinic(ctx, req.ClinicID, req.VetID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to check vet membership: %v", err)
		return nil, fmt.Errorf("%w: failed to check vet membership: %v", ErrInternal, err)
	}
	if !isVet {
		uc.logger.Warn("CreateAppointment: vet id=%s does not belong to clinic id=%s", req.VetID, req.ClinicID)
		return nil, ErrVetNotInClinic
	}

	requested := domain.Interval{Start: req.StartAt, End: req.StartAt.Add(domain.AppointmentDuration)}

	// 5. Проверка и вставка под блокировкой
	var result *domain.Appointment
	book := func(lockCtx context.Context) error {
		created, err := uc.book(lockCtx, req, requested)
		if err != nil {
			return err
		}
		result = created
		return nil
	}

	err = uc.locker.WithLock(ctx, lock.AppointmentKey(req.VetID, req.StartAt), book)
	switch {
	case errors.Is(err, lock.ErrLockNotAcquired):
		uc.logger.Warn("CreateAppointment: vet=%s start=%s is being booked concurrently", req.VetID, req.StartAt)
		return nil, ErrBookingInProgress
	case errors.Is(err, lock.ErrLockBackend):
		// Redis недоступен: корректность обеспечивают транзакция и уникальный индекс
		uc.logger.Warn("CreateAppointment: lock backend unavailable, booking without lock: %v", err)
		err = book(ctx)
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%s", result.ID)

	// 6. Напоминания и уведомление врача. Ошибки не влияют на результат записи
	if _, err := uc.planner.Plan(ctx, result.ID); err != nil {
		uc.logger.Error("CreateAppointment: failed to plan reminders for appointment id=%s: %v", result.ID, err)
	}
	uc.notifier.AppointmentRequested(ctx, result)

	return toResponse(result), nil
}

// book проверяет пересечения и создает приём в сериализуемой транзакции
func (uc *UseCase) book(ctx context.Context, req *Request, requested domain.Interval) (*domain.Appointment, error) {
	var result *domain.Appointment

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Блоки недоступности врача
		blocks, err := uc.agendaRepo.List(txCtx, domain.AgendaBlockFilter{
			VetID: &req.VetID,
			From:  requested.Start,
			To:    requested.End,
		})
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get agenda blocks: %v", err)
			return fmt.Errorf("%w: failed to get agenda blocks: %v", ErrInternal, err)
		}
		if isBlocked(requested, req.VetID, blocks) {
			uc.logger.Warn("CreateAppointment: vet=%s is unavailable at %s", req.VetID, requested.Start)
			return ErrVetUnavailable
		}

		// Приёмы врача, пересекающие интервал, с блокировкой строк
		appointments, err := uc.appointmentRepo.List(txCtx, domain.AppointmentFilter{
			VetID:    &req.VetID,
			From:     &requested.Start,
			To:       &requested.End,
			Statuses: domain.TimeBlockingStatuses,
		})
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}
		if hasConflict(requested, req.VetID, appointments) {
			uc.logger.Warn("CreateAppointment: vet=%s already booked at %s", req.VetID, requested.Start)
			return ErrSlotAlreadyBooked
		}

		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			ClinicID:  req.ClinicID,
			AnimalID:  req.AnimalID,
			VetID:     req.VetID,
			TypeID:    req.TypeID,
			Status:    domain.AppointmentPending,
			StartAt:   requested.Start,
			EndAt:     requested.End,
			CreatedBy: req.Principal.UserID,
			Notes:     req.Notes,
		})
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateAppointment: unique index rejected vet=%s start=%s", req.VetID, requested.Start)
				return ErrSlotAlreadyBooked
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})
	if txmanager.IsSerializationFailure(err) {
		uc.logger.Warn("CreateAppointment: serialization conflict for vet=%s start=%s", req.VetID, requested.Start)
		return nil, ErrBookingInProgress
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func toResponse(a *domain.Appointment) *Response {
	return &Response{
		ID:        a.ID,
		ClinicID:  a.ClinicID,
		AnimalID:  a.AnimalID,
		VetID:     a.VetID,
		TypeID:    a.TypeID,
		Status:    string(a.Status),
		StartAt:   a.StartAt,
		EndAt:     a.EndAt,
		CreatedBy: a.CreatedBy,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
