package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
)

// UseCase use case для получения свободных слотов клиники на день
type UseCase struct {
	clinicRepo      ClinicRepository
	slotRepo        SlotRepository
	appointmentRepo AppointmentRepository
	agendaRepo      AgendaRepository
	location        *time.Location
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// location задаёт часовой пояс, в котором считаются границы календарного дня
func NewUseCase(
	clinicRepo ClinicRepository,
	slotRepo SlotRepository,
	appointmentRepo AppointmentRepository,
	agendaRepo AgendaRepository,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		clinicRepo:      clinicRepo,
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		agendaRepo:      agendaRepo,
		location:        location,
		logger:          logger,
	}
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: clinic=%s, vet=%s, date=%s",
		req.ClinicID, vetLabel(req), req.Date.Format(domain.DateFormat))

	// 2. Проверяем существование клиники
	if _, err := uc.clinicRepo.GetByID(ctx, req.ClinicID); err != nil {
		if errors.Is(err, clinicRepo.ErrClinicNotFound) {
			uc.logger.Warn("GetAvailableSlots: clinic id=%s not found", req.ClinicID)
			return nil, ErrClinicNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get clinic id=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: failed to get clinic: %v", ErrInternal, err)
	}

	// 3. Границы календарного дня [00:00, 00:00 следующего дня)
	day := domain.DayBounds(req.Date, uc.location)

	// 4. Свободные слоты клиники (для врача - его и общие)
	slots, err := uc.slotRepo.List(ctx, domain.TimeSlotFilter{
		ClinicID:      req.ClinicID,
		VetID:         req.VetID,
		From:          day.Start,
		To:            day.End,
		OnlyAvailable: true,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get slots: %v", err)
		return nil, fmt.Errorf("%w: failed to get slots: %v", ErrInternal, err)
	}

	if len(slots) == 0 {
		return uc.response(req, day, []Slot{}), nil
	}

	// 5. Врачи, чьё время влияет на слоты. Их приёмы и блоки учитываем во всех клиниках
	vetIDs, err := uc.relevantVets(ctx, req, slots)
	if err != nil {
		return nil, err
	}

	// 6. Приёмы, занимающие время в этот день
	appointmentFilter := domain.AppointmentFilter{
		From:     &day.Start,
		To:       &day.End,
		Statuses: domain.TimeBlockingStatuses,
	}
	if len(vetIDs) > 0 {
		appointmentFilter.VetIDs = vetIDs
	} else {
		appointmentFilter.ClinicID = &req.ClinicID
	}

	appointments, err := uc.appointmentRepo.List(ctx, appointmentFilter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 7. Блоки недоступности, пересекающие день
	blockFilter := domain.AgendaBlockFilter{
		From: day.Start,
		To:   day.End,
	}
	if len(vetIDs) > 0 {
		blockFilter.VetIDs = vetIDs
	} else {
		blockFilter.ClinicID = &req.ClinicID
	}

	blocks, err := uc.agendaRepo.List(ctx, blockFilter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get agenda blocks: %v", err)
		return nil, fmt.Errorf("%w: failed to get agenda blocks: %v", ErrInternal, err)
	}

	// 8. Фильтруем и сортируем
	available := filterAvailableSlots(day, slots, appointments, blocks)

	uc.logger.Info("GetAvailableSlots: %d of %d slots available for clinic=%s, date=%s",
		len(available), len(slots), req.ClinicID, req.Date.Format(domain.DateFormat))

	return uc.response(req, day, available), nil
}

// relevantVets врачи, к которым относятся слоты дня.
// Общий слот (без врача) относится ко всем врачам клиники
func (uc *UseCase) relevantVets(ctx context.Context, req *Request, slots []*domain.TimeSlot) ([]uuid.UUID, error) {
	if req.VetID != nil {
		return []uuid.UUID{*req.VetID}, nil
	}

	seen := make(map[uuid.UUID]struct{})
	vetIDs := make([]uuid.UUID, 0)
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		vetIDs = append(vetIDs, id)
	}

	hasShared := false
	for _, slot := range slots {
		if slot.VetID == nil {
			hasShared = true
			continue
		}
		add(*slot.VetID)
	}

	if hasShared {
		vets, err := uc.clinicRepo.ListVets(ctx, req.ClinicID)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get vets of clinic=%s: %v", req.ClinicID, err)
			return nil, fmt.Errorf("%w: failed to get clinic vets: %v", ErrInternal, err)
		}
		for _, vet := range vets {
			add(vet.ID)
		}
	}

	return vetIDs, nil
}

func (uc *UseCase) response(req *Request, day domain.Interval, slots []Slot) *Response {
	return &Response{
		Date:     day.Start,
		ClinicID: req.ClinicID,
		VetID:    req.VetID,
		Slots:    slots,
	}
}

func vetLabel(req *Request) string {
	if req.VetID == nil {
		return "any"
	}
	return req.VetID.String()
}
