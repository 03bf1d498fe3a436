package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	animalRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/animal"
	"github.com/m04kA/SMC-VetBookingService/internal/service/animals/models"
)

const (
	maxSpeciesLength = 100
	maxBreedLength   = 100
	maxWeightKg      = 2000
)

var allowedSex = map[string]struct{}{
	"MALE":    {},
	"FEMALE":  {},
	"UNKNOWN": {},
}

// Service сервис животных владельца
type Service struct {
	animalRepo   AnimalRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса животных
func NewService(animalRepo AnimalRepository, logger Logger) *Service {
	return &Service{
		animalRepo:   animalRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create регистрирует животное вызывающего пользователя
func (s *Service) Create(ctx context.Context, p domain.Principal, req *models.CreateAnimalRequest) (*models.AnimalResponse, error) {
	s.logger.Info("Create: owner=%s name=%q", p.UserID, req.Name)

	animal := &domain.Animal{
		ID:      uuid.New(),
		OwnerID: p.UserID,
		Name:    strings.TrimSpace(req.Name),
		Species: strings.TrimSpace(req.Species),
	}
	if err := s.apply(animal, req.Breed, req.Sex, req.BirthDate, req.WeightKg, req.Notes); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}
	if err := validateRequired(animal); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.animalRepo.Create(ctx, animal)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: animal=%s created for owner=%s", created.ID, p.UserID)
	return models.FromDomainAnimal(created), nil
}

// ListMine возвращает животных вызывающего пользователя
func (s *Service) ListMine(ctx context.Context, p domain.Principal) (*models.AnimalListResponse, error) {
	list, err := s.animalRepo.ListByOwner(ctx, p.UserID)
	if err != nil {
		s.logger.Error("ListMine: repository error for owner=%s: %v", p.UserID, err)
		return nil, fmt.Errorf("%w: ListMine - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainAnimalList(list), nil
}

// GetByID возвращает животное владельцу, врачу или персоналу клиники
func (s *Service) GetByID(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.AnimalResponse, error) {
	animal, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}
	if animal.OwnerID != p.UserID && !p.Is(domain.RoleVet) && !p.IsStaff() {
		s.logger.Warn("GetByID: access denied for user=%s to animal=%s", p.UserID, id)
		return nil, ErrAccessDenied
	}
	return models.FromDomainAnimal(animal), nil
}

// Update меняет переданные поля. Пустая строка очищает необязательное поле.
func (s *Service) Update(ctx context.Context, p domain.Principal, id uuid.UUID, req *models.UpdateAnimalRequest) (*models.AnimalResponse, error) {
	s.logger.Info("Update: animal=%s by user=%s", id, p.UserID)

	animal, err := s.getOwned(ctx, "Update", p, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		animal.Name = strings.TrimSpace(*req.Name)
	}
	if req.Species != nil {
		animal.Species = strings.TrimSpace(*req.Species)
	}
	if err := s.apply(animal, req.Breed, req.Sex, req.BirthDate, req.WeightKg, req.Notes); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}
	if err := validateRequired(animal); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	updated, err := s.animalRepo.Update(ctx, animal)
	if err != nil {
		if errors.Is(err, animalRepo.ErrAnimalNotFound) {
			return nil, ErrAnimalNotFound
		}
		s.logger.Error("Update: repository error for animal=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainAnimal(updated), nil
}

// Delete удаляет животное владельца
func (s *Service) Delete(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	s.logger.Info("Delete: animal=%s by user=%s", id, p.UserID)

	if _, err := s.getOwned(ctx, "Delete", p, id); err != nil {
		return err
	}

	if err := s.animalRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, animalRepo.ErrAnimalNotFound):
			return ErrAnimalNotFound
		case errors.Is(err, animalRepo.ErrAnimalInUse):
			s.logger.Warn("Delete: animal=%s has appointments", id)
			return ErrAnimalInUse
		default:
			s.logger.Error("Delete: repository error for animal=%s: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Delete: animal=%s deleted", id)
	return nil
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID) (*domain.Animal, error) {
	animal, err := s.animalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, animalRepo.ErrAnimalNotFound) {
			s.logger.Warn("%s: animal=%s not found", op, id)
			return nil, ErrAnimalNotFound
		}
		s.logger.Error("%s: repository error for animal=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return animal, nil
}

func (s *Service) getOwned(ctx context.Context, op string, p domain.Principal, id uuid.UUID) (*domain.Animal, error) {
	animal, err := s.get(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if animal.OwnerID != p.UserID {
		s.logger.Warn("%s: user=%s is not the owner of animal=%s", op, p.UserID, id)
		return nil, ErrAccessDenied
	}
	return animal, nil
}

// apply переносит необязательные поля запроса в модель
func (s *Service) apply(a *domain.Animal, breed, sex, birthDate *string, weight *float64, notes *string) error {
	if breed != nil {
		a.Breed = optional(*breed)
		if a.Breed != nil && len([]rune(*a.Breed)) > maxBreedLength {
			return fmt.Errorf("%w: breed must be at most %d characters", ErrInvalidInput, maxBreedLength)
		}
	}

	if sex != nil {
		a.Sex = optional(strings.ToUpper(*sex))
		if a.Sex != nil {
			if _, ok := allowedSex[*a.Sex]; !ok {
				return fmt.Errorf("%w: sex must be MALE, FEMALE or UNKNOWN", ErrInvalidInput)
			}
		}
	}

	if birthDate != nil {
		a.BirthDate = nil
		if v := strings.TrimSpace(*birthDate); v != "" {
			date, err := time.Parse(domain.DateFormat, v)
			if err != nil {
				return fmt.Errorf("%w: birthDate must be YYYY-MM-DD", ErrInvalidInput)
			}
			if date.After(s.timeProvider.Now()) {
				return fmt.Errorf("%w: birthDate must not be in the future", ErrInvalidInput)
			}
			a.BirthDate = &date
		}
	}

	if weight != nil {
		if *weight <= 0 || *weight > maxWeightKg {
			return fmt.Errorf("%w: weightKg must be in (0, %d]", ErrInvalidInput, maxWeightKg)
		}
		w := *weight
		a.WeightKg = &w
	}

	if notes != nil {
		a.Notes = optional(*notes)
		if a.Notes != nil && len([]rune(*a.Notes)) > domain.MaxNotesLength {
			return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
		}
	}
	return nil
}

func validateRequired(a *domain.Animal) error {
	switch {
	case a.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case len([]rune(a.Name)) > domain.MaxNameLength:
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, domain.MaxNameLength)
	case a.Species == "":
		return fmt.Errorf("%w: species is required", ErrInvalidInput)
	case len([]rune(a.Species)) > maxSpeciesLength:
		return fmt.Errorf("%w: species must be at most %d characters", ErrInvalidInput, maxSpeciesLength)
	}
	return nil
}

func optional(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
