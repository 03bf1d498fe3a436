package appointments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-VetBookingService/internal/service/appointments/models"
)

// maxReportLength ограничение на размер заключения врача
const maxReportLength = 10000

// Service сервис чтения и смены статусов приёмов
type Service struct {
	appointmentRepo AppointmentRepository
	reminders       ReminderCanceller
	notifier        Notifier
	logger          Logger
}

// NewService создает новый экземпляр сервиса приёмов
func NewService(
	appointmentRepo AppointmentRepository,
	reminders ReminderCanceller,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		reminders:       reminders,
		notifier:        notifier,
		logger:          logger,
	}
}

// GetByID возвращает приём владельцу, врачу или персоналу клиники
func (s *Service) GetByID(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.AppointmentResponse, error) {
	appointment, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !appointment.VisibleTo(p) {
		s.logger.Warn("GetByID: access denied for user=%s to appointment=%s", p.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appointment), nil
}

// ListMine возвращает приёмы, созданные пользователем, а для врача ещё и назначенные ему
func (s *Service) ListMine(ctx context.Context, p domain.Principal, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListMine: user=%s status=%v", p.UserID, req.Status)

	filter := domain.AppointmentFilter{From: req.From, To: req.To}
	if req.Status != nil {
		status, ok := domain.ParseAppointmentStatus(strings.ToUpper(*req.Status))
		if !ok {
			return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *req.Status)
		}
		filter.Statuses = []domain.AppointmentStatus{status}
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	byCreator := filter
	byCreator.CreatedBy = &p.UserID
	list, err := s.appointmentRepo.List(ctx, byCreator)
	if err != nil {
		s.logger.Error("ListMine: repository error for user=%s: %v", p.UserID, err)
		return nil, fmt.Errorf("%w: ListMine - repository error: %v", ErrInternal, err)
	}

	if p.Is(domain.RoleVet) {
		byVet := filter
		byVet.VetID = &p.UserID
		assigned, err := s.appointmentRepo.List(ctx, byVet)
		if err != nil {
			s.logger.Error("ListMine: repository error for vet=%s: %v", p.UserID, err)
			return nil, fmt.Errorf("%w: ListMine - repository error: %v", ErrInternal, err)
		}
		list = mergeByID(list, assigned)
	}

	return models.FromDomainAppointmentList(list), nil
}

// Confirm подтверждает ожидающий приём
func (s *Service) Confirm(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.AppointmentResponse, error) {
	s.logger.Info("Confirm: appointment=%s by user=%s", id, p.UserID)

	appointment, err := s.get(ctx, "Confirm", id)
	if err != nil {
		return nil, err
	}
	if !appointment.ManageableBy(p) {
		s.logger.Warn("Confirm: access denied for user=%s to appointment=%s", p.UserID, id)
		return nil, ErrAccessDenied
	}
	if !appointment.CanConfirm() {
		s.logger.Warn("Confirm: appointment=%s has status=%s", id, appointment.Status)
		return nil, ErrStatusConflict
	}

	return s.transition(ctx, "Confirm", id,
		[]domain.AppointmentStatus{domain.AppointmentPending},
		domain.AppointmentChange{Status: domain.AppointmentConfirmed},
	)
}

// Reject отклоняет ожидающий или подтверждённый приём
func (s *Service) Reject(ctx context.Context, p domain.Principal, id uuid.UUID, req *models.RejectRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Reject: appointment=%s by user=%s", id, p.UserID)

	reason, err := cleanText(req.Reason, domain.MaxReasonLength, "reason")
	if err != nil {
		return nil, err
	}

	appointment, err := s.get(ctx, "Reject", id)
	if err != nil {
		return nil, err
	}
	if !appointment.ManageableBy(p) {
		s.logger.Warn("Reject: access denied for user=%s to appointment=%s", p.UserID, id)
		return nil, ErrAccessDenied
	}
	if !appointment.CanReject() {
		s.logger.Warn("Reject: appointment=%s has status=%s", id, appointment.Status)
		return nil, ErrStatusConflict
	}

	return s.transition(ctx, "Reject", id,
		[]domain.AppointmentStatus{domain.AppointmentPending, domain.AppointmentConfirmed},
		domain.AppointmentChange{Status: domain.AppointmentRejected, RejectReason: reason},
	)
}

// Complete завершает подтверждённый приём. Доступно только врачу приёма.
func (s *Service) Complete(ctx context.Context, p domain.Principal, id uuid.UUID, req *models.CompleteRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Complete: appointment=%s by user=%s", id, p.UserID)

	notes, err := cleanText(req.Notes, domain.MaxNotesLength, "notes")
	if err != nil {
		return nil, err
	}
	report, err := cleanText(req.Report, maxReportLength, "report")
	if err != nil {
		return nil, err
	}

	appointment, err := s.get(ctx, "Complete", id)
	if err != nil {
		return nil, err
	}
	// Права проверяются раньше статуса
	if appointment.VetID != p.UserID {
		s.logger.Warn("Complete: user=%s is not the vet of appointment=%s", p.UserID, id)
		return nil, ErrAccessDenied
	}
	if !appointment.CanComplete() {
		s.logger.Warn("Complete: appointment=%s has status=%s", id, appointment.Status)
		return nil, ErrStatusConflict
	}

	return s.transition(ctx, "Complete", id,
		[]domain.AppointmentStatus{domain.AppointmentConfirmed},
		domain.AppointmentChange{Status: domain.AppointmentCompleted, Notes: notes, Report: report},
	)
}

// Cancel отменяет приём по инициативе владельца или персонала клиники
func (s *Service) Cancel(ctx context.Context, p domain.Principal, id uuid.UUID, req *models.CancelRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: appointment=%s by user=%s", id, p.UserID)

	reason, err := cleanText(req.Reason, domain.MaxReasonLength, "reason")
	if err != nil {
		return nil, err
	}

	appointment, err := s.get(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}
	if appointment.CreatedBy != p.UserID && !p.IsStaff() {
		s.logger.Warn("Cancel: access denied for user=%s to appointment=%s", p.UserID, id)
		return nil, ErrAccessDenied
	}
	if !appointment.CanCancel() {
		s.logger.Warn("Cancel: appointment=%s has status=%s", id, appointment.Status)
		return nil, ErrStatusConflict
	}

	return s.transition(ctx, "Cancel", id,
		[]domain.AppointmentStatus{domain.AppointmentPending, domain.AppointmentConfirmed},
		domain.AppointmentChange{Status: domain.AppointmentCancelled, RejectReason: reason},
	)
}

// transition выполняет условный UPDATE и побочные действия после него.
// Ноль затронутых строк означает, что статус уже сменил параллельный запрос.
func (s *Service) transition(
	ctx context.Context,
	op string,
	id uuid.UUID,
	from []domain.AppointmentStatus,
	change domain.AppointmentChange,
) (*models.AppointmentResponse, error) {
	updated, err := s.appointmentRepo.Transition(ctx, id, from, change)
	if err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Warn("%s: appointment=%s disappeared", op, id)
			return nil, ErrAppointmentNotFound
		case errors.Is(err, appointmentRepo.ErrStatusConflict):
			s.logger.Warn("%s: appointment=%s was changed concurrently", op, id)
			return nil, ErrStatusConflict
		default:
			s.logger.Error("%s: repository error for appointment=%s: %v", op, id, err)
			return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}
	}

	if !updated.BlocksTime() {
		if err := s.reminders.CancelForAppointment(ctx, id); err != nil {
			s.logger.Error("%s: failed to cancel reminders of appointment=%s: %v", op, id, err)
		}
	}
	s.notifier.AppointmentStatusChanged(ctx, updated)

	s.logger.Info("%s: appointment=%s is now %s", op, id, updated.Status)
	return models.FromDomainAppointment(updated), nil
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment=%s not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}

// cleanText обрезает пробелы, пустую строку превращает в nil и проверяет длину
func cleanText(v *string, max int, field string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > max {
		return nil, fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, max)
	}
	return &trimmed, nil
}

// mergeByID объединяет списки без дублей, сортируя по началу приёма
func mergeByID(a, b []*domain.Appointment) []*domain.Appointment {
	seen := make(map[uuid.UUID]struct{}, len(a)+len(b))
	out := make([]*domain.Appointment, 0, len(a)+len(b))
	for _, list := range [][]*domain.Appointment{a, b} {
		for _, appt := range list {
			if _, ok := seen[appt.ID]; ok {
				continue
			}
			seen[appt.ID] = struct{}{}
			out = append(out, appt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out
}
