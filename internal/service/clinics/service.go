package clinics

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	userRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-VetBookingService/internal/service/clinics/models"
)

const maxPhoneLength = 32

// Service сервис справочника клиник
type Service struct {
	clinicRepo ClinicRepository
	userRepo   UserRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса клиник
func NewService(clinicRepo ClinicRepository, userRepo UserRepository, logger Logger) *Service {
	return &Service{
		clinicRepo: clinicRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// List возвращает клиники с фильтром по городу и подстроке названия
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.ClinicListResponse, error) {
	filter := domain.ClinicFilter{
		City:  nonEmpty(req.City),
		Query: nonEmpty(req.Query),
	}

	list, err := s.clinicRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainClinicList(list), nil
}

// GetByID возвращает клинику
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.ClinicResponse, error) {
	clinic, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainClinic(clinic), nil
}

// ListVets возвращает врачей клиники
func (s *Service) ListVets(ctx context.Context, clinicID uuid.UUID) (*models.VetListResponse, error) {
	if _, err := s.get(ctx, "ListVets", clinicID); err != nil {
		return nil, err
	}

	vets, err := s.clinicRepo.ListVets(ctx, clinicID)
	if err != nil {
		s.logger.Error("ListVets: repository error for clinic=%s: %v", clinicID, err)
		return nil, fmt.Errorf("%w: ListVets - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainVetList(clinicID, vets), nil
}

// Create создаёт клинику
func (s *Service) Create(ctx context.Context, req *models.CreateClinicRequest) (*models.ClinicResponse, error) {
	s.logger.Info("Create: name=%q city=%q", req.Name, req.City)

	clinic, err := validateClinic(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.clinicRepo.Create(ctx, clinic)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: clinic=%s created", created.ID)
	return models.FromDomainClinic(created), nil
}

// AddVet привязывает пользователя с ролью VET к клинике
func (s *Service) AddVet(ctx context.Context, clinicID uuid.UUID, req *models.AddVetRequest) (*models.VetListResponse, error) {
	s.logger.Info("AddVet: clinic=%s vet=%s", clinicID, req.VetID)

	if req.VetID == uuid.Nil {
		return nil, fmt.Errorf("%w: vetId is required", ErrInvalidInput)
	}
	if _, err := s.get(ctx, "AddVet", clinicID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, req.VetID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("AddVet: user=%s not found", req.VetID)
			return nil, ErrUserNotFound
		}
		s.logger.Error("AddVet: failed to get user=%s: %v", req.VetID, err)
		return nil, fmt.Errorf("%w: AddVet - repository error: %v", ErrInternal, err)
	}
	if !user.Roles.Has(domain.RoleVet) {
		s.logger.Warn("AddVet: user=%s has no VET role", req.VetID)
		return nil, ErrNotAVet
	}

	if err := s.clinicRepo.AddVet(ctx, clinicID, req.VetID); err != nil {
		if errors.Is(err, clinicRepo.ErrVetAlreadyAdded) {
			s.logger.Warn("AddVet: vet=%s already in clinic=%s", req.VetID, clinicID)
			return nil, ErrVetAlreadyAdded
		}
		s.logger.Error("AddVet: repository error: %v", err)
		return nil, fmt.Errorf("%w: AddVet - repository error: %v", ErrInternal, err)
	}

	return s.ListVets(ctx, clinicID)
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID) (*domain.Clinic, error) {
	clinic, err := s.clinicRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, clinicRepo.ErrClinicNotFound) {
			s.logger.Warn("%s: clinic=%s not found", op, id)
			return nil, ErrClinicNotFound
		}
		s.logger.Error("%s: repository error for clinic=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return clinic, nil
}

func validateClinic(req *models.CreateClinicRequest) (*domain.Clinic, error) {
	c := &domain.Clinic{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		Phone:   nonEmpty(req.Phone),
		Email:   nonEmpty(req.Email),
	}

	switch {
	case c.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case len([]rune(c.Name)) > domain.MaxNameLength:
		return nil, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, domain.MaxNameLength)
	case c.Address == "":
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	case c.City == "":
		return nil, fmt.Errorf("%w: city is required", ErrInvalidInput)
	}
	if c.Phone != nil && len(*c.Phone) > maxPhoneLength {
		return nil, fmt.Errorf("%w: phone must be at most %d characters", ErrInvalidInput, maxPhoneLength)
	}
	if c.Email != nil {
		if _, err := mail.ParseAddress(*c.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
	}
	return c, nil
}

// nonEmpty обрезает пробелы и превращает пустую строку в nil
func nonEmpty(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
