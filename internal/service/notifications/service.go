package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	notificationRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/notification"
	"github.com/m04kA/SMC-VetBookingService/internal/service/notifications/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/ptr"
)

// Лимиты выдачи списка уведомлений
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// startAtLayout формат времени приёма в тексте уведомлений
const startAtLayout = "2006-01-02 15:04 MST"

// Service сервис уведомлений: шаблоны, in-app хранилище и email
type Service struct {
	notificationRepo NotificationRepository
	userRepo         UserRepository
	animalRepo       AnimalRepository
	clinicRepo       ClinicRepository
	mailer           Mailer
	recorder         MetricsRecorder
	location         *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса уведомлений
func NewService(
	notificationRepo NotificationRepository,
	userRepo UserRepository,
	animalRepo AnimalRepository,
	clinicRepo ClinicRepository,
	mailer Mailer,
	recorder MetricsRecorder,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		animalRepo:       animalRepo,
		clinicRepo:       clinicRepo,
		mailer:           mailer,
		recorder:         recorder,
		location:         location,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// AppointmentRequested сообщает врачу о новой заявке. Ошибки только логируются.
func (s *Service) AppointmentRequested(ctx context.Context, appointment *domain.Appointment) {
	animal := s.loadAnimal(ctx, appointment.AnimalID)
	s.notifyAboutAppointment(ctx, appointment.VetID, KindAppointmentRequested, appointment, animal)
}

// AppointmentStatusChanged сообщает владельцу животного о смене статуса приёма.
// Если животное не найдено, сообщение получает автор записи. Ошибки только логируются.
func (s *Service) AppointmentStatusChanged(ctx context.Context, appointment *domain.Appointment) {
	var kind Kind
	switch appointment.Status {
	case domain.AppointmentConfirmed:
		kind = KindAppointmentConfirmed
	case domain.AppointmentRejected:
		kind = KindAppointmentRejected
	case domain.AppointmentCompleted:
		kind = KindAppointmentCompleted
	case domain.AppointmentCancelled:
		kind = KindAppointmentCancelled
	default:
		s.logger.Warn("AppointmentStatusChanged: no template for status=%s", appointment.Status)
		return
	}

	animal := s.loadAnimal(ctx, appointment.AnimalID)
	recipientID := appointment.CreatedBy
	if animal != nil {
		recipientID = animal.OwnerID
	}
	s.notifyAboutAppointment(ctx, recipientID, kind, appointment, animal)
}

func (s *Service) notifyAboutAppointment(
	ctx context.Context,
	recipientID uuid.UUID,
	kind Kind,
	appointment *domain.Appointment,
	animal *domain.Animal,
) {
	user, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		s.logger.Error("notify %s: failed to load user=%s: %v", kind, recipientID, err)
		return
	}

	data := TemplateData{
		RecipientName: user.FullName(),
		StartAt:       s.formatStart(appointment.StartAt),
		AnimalName:    animalName(animal),
		ClinicName:    s.clinicName(ctx, appointment.ClinicID),
	}
	switch kind {
	case KindAppointmentRejected, KindAppointmentCancelled:
		data.Reason = ptr.Deref(appointment.RejectReason, "")
	default:
		data.Notes = ptr.Deref(appointment.Notes, "")
	}

	if err := s.Notify(ctx, user, kind, data, true, true); err != nil {
		s.logger.Warn("notify %s: appointment=%s user=%s: %v", kind, appointment.ID, recipientID, err)
	}
}

// DispatchReminder доставляет напоминание по каналам правила
func (s *Service) DispatchReminder(ctx context.Context, rule *domain.ReminderRule, inst *domain.ReminderInstance) error {
	user, err := s.userRepo.GetByID(ctx, inst.UserID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", inst.UserID, err)
	}

	var payload domain.ReminderPayload
	if len(inst.Payload) > 0 {
		if err := json.Unmarshal(inst.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload of reminder %s: %w", inst.ID, err)
		}
	}

	data := TemplateData{
		RecipientName: user.FullName(),
		AnimalName:    payload.AnimalName,
		ClinicName:    payload.ClinicName,
		StartAt:       s.formatStart(payload.StartAt),
	}
	return s.Notify(ctx, user, KindReminder, data, rule.SendInApp, rule.SendEmail)
}

// Notify рендерит шаблон и доставляет уведомление в выбранные каналы.
// Email без адреса пропускается. Неудачная отправка сохраняется со статусом FAILED.
func (s *Service) Notify(ctx context.Context, user *domain.User, kind Kind, data TemplateData, inApp, email bool) error {
	subject, body, err := Render(kind, data)
	if err != nil {
		s.logger.Error("Notify: %v", err)
		return err
	}

	var errs []error

	if inApp {
		n := &domain.Notification{
			ID:      uuid.New(),
			UserID:  user.ID,
			Channel: domain.ChannelInApp,
			Subject: subject,
			Body:    body,
			Status:  domain.NotificationSent,
		}
		if err := s.store(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}

	if email && user.Email != "" {
		n := &domain.Notification{
			ID:      uuid.New(),
			UserID:  user.ID,
			Channel: domain.ChannelEmail,
			Subject: subject,
			Body:    body,
			Status:  domain.NotificationSent,
		}
		if sendErr := s.mailer.Send(ctx, user.Email, subject, body); sendErr != nil {
			s.logger.Warn("Notify: email %s to user=%s failed: %v", kind, user.ID, sendErr)
			reason := sendErr.Error()
			n.Status = domain.NotificationFailed
			n.Error = &reason
			errs = append(errs, fmt.Errorf("%w: email: %v", ErrDeliveryFailed, sendErr))
		}
		if err := s.store(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Service) store(ctx context.Context, n *domain.Notification) error {
	s.recorder.NotificationProcessed(string(n.Channel), string(n.Status))
	if _, err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("Notify: failed to store %s notification for user=%s: %v", n.Channel, n.UserID, err)
		return fmt.Errorf("%w: store notification: %v", ErrInternal, err)
	}
	return nil
}

// ListMine возвращает уведомления пользователя, новые сверху
func (s *Service) ListMine(ctx context.Context, req *models.ListRequest) (*models.NotificationListResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	list, err := s.notificationRepo.ListByUser(ctx, req.UserID, req.OnlyUnread, limit)
	if err != nil {
		s.logger.Error("ListMine: repository error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: ListMine - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainNotificationList(list), nil
}

// MarkRead отмечает уведомление прочитанным. Повторная отметка сохраняет первое время.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.NotificationResponse, error) {
	n, err := s.notificationRepo.MarkRead(ctx, id, userID, s.timeProvider.Now())
	if err != nil {
		if errors.Is(err, notificationRepo.ErrNotificationNotFound) {
			s.logger.Warn("MarkRead: notification=%s of user=%s not found", id, userID)
			return nil, ErrNotificationNotFound
		}
		s.logger.Error("MarkRead: repository error for notification=%s: %v", id, err)
		return nil, fmt.Errorf("%w: MarkRead - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainNotification(n), nil
}

func (s *Service) formatStart(t time.Time) string {
	if t.IsZero() {
		return "the scheduled time"
	}
	return t.In(s.location).Format(startAtLayout)
}

func (s *Service) loadAnimal(ctx context.Context, id uuid.UUID) *domain.Animal {
	animal, err := s.animalRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("notify: failed to load animal=%s: %v", id, err)
		return nil
	}
	return animal
}

func animalName(animal *domain.Animal) string {
	if animal == nil {
		return "your pet"
	}
	return animal.Name
}

func (s *Service) clinicName(ctx context.Context, id uuid.UUID) string {
	clinic, err := s.clinicRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("notify: failed to load clinic=%s: %v", id, err)
		return "the clinic"
	}
	return clinic.Name
}
