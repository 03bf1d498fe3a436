package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	userRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-VetBookingService/internal/service/auth/models"
)

const (
	tokenType         = "Bearer"
	maxPasswordLength = 72 // bcrypt игнорирует всё после 72 байт
	maxPhoneLength    = 32
)

// Service сервис регистрации, входа и управления профилем
type Service struct {
	userRepo UserRepository
	hasher   *PasswordHasher
	tokens   *TokenManager
	logger   Logger
}

// NewService создает новый экземпляр сервиса авторизации
func NewService(
	userRepo UserRepository,
	hasher *PasswordHasher,
	tokens *TokenManager,
	logger Logger,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register создаёт владельца животного и сразу выдаёт токен
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	s.logger.Info("Register: registering email=%s", req.Email)

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if err := validateName(firstName, lastName); err != nil {
		return nil, err
	}
	if err := validatePhone(req.Phone); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("Register: %v", err)
		return nil, fmt.Errorf("%w: Register - hash password: %v", ErrInternal, err)
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        req.Phone,
		PrimaryRole:  domain.RoleOwner,
		Roles:        domain.NewRoleSet(domain.RoleOwner),
	})
	if err != nil {
		if errors.Is(err, userRepo.ErrEmailExists) {
			s.logger.Warn("Register: email=%s already registered", email)
			return nil, ErrEmailTaken
		}
		s.logger.Error("Register: repository error: %v", err)
		return nil, fmt.Errorf("%w: Register - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Register: created user=%s", user.ID)
	return s.issue(user)
}

// Login проверяет пароль и выдаёт токен
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("Login: unknown email=%s", req.Email)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login: repository error: %v", err)
		return nil, fmt.Errorf("%w: Login - repository error: %v", ErrInternal, err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		s.logger.Error("Login: verify password for user=%s: %v", user.ID, err)
		return nil, fmt.Errorf("%w: Login - verify password: %v", ErrInternal, err)
	}
	if !ok {
		s.logger.Warn("Login: wrong password for user=%s", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("Login: user=%s logged in", user.ID)
	return s.issue(user)
}

// ParseToken проверяет токен и возвращает вызывающего
func (s *Service) ParseToken(token string) (domain.Principal, error) {
	return s.tokens.Parse(token)
}

// Profile возвращает профиль пользователя
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*models.ProfileResponse, error) {
	user, err := s.getUser(ctx, "Profile", userID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainUser(user), nil
}

// UpdateProfile меняет имя и телефон
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	s.logger.Info("UpdateProfile: user=%s", userID)

	user, err := s.getUser(ctx, "UpdateProfile", userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		if err := validatePhone(req.Phone); err != nil {
			return nil, err
		}
		if phone := strings.TrimSpace(*req.Phone); phone == "" {
			user.Phone = nil
		} else {
			user.Phone = &phone
		}
	}
	if err := validateName(user.FirstName, user.LastName); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.UpdateProfile(ctx, user)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("UpdateProfile: repository error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: UpdateProfile - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainUser(updated), nil
}

// ChangePassword меняет пароль после проверки текущего
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	s.logger.Info("ChangePassword: user=%s", userID)

	user, err := s.getUser(ctx, "ChangePassword", userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		s.logger.Error("ChangePassword: verify password for user=%s: %v", userID, err)
		return fmt.Errorf("%w: ChangePassword - verify password: %v", ErrInternal, err)
	}
	if !ok {
		s.logger.Warn("ChangePassword: wrong current password for user=%s", userID)
		return ErrInvalidCredentials
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("%w: ChangePassword - hash password: %v", ErrInternal, err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("ChangePassword: repository error for user=%s: %v", userID, err)
		return fmt.Errorf("%w: ChangePassword - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ChangePassword: password changed for user=%s", userID)
	return nil
}

// GrantRole добавляет роль пользователю. Основная роль пересчитывается по старшинству.
func (s *Service) GrantRole(ctx context.Context, userID uuid.UUID, req *models.GrantRoleRequest) (*models.ProfileResponse, error) {
	s.logger.Info("GrantRole: user=%s role=%s", userID, req.Role)

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user, err := s.getUser(ctx, "GrantRole", userID)
	if err != nil {
		return nil, err
	}

	user.GrantRole(role)
	if err := s.userRepo.UpdateRoles(ctx, user.ID, user.PrimaryRole, user.Roles); err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("GrantRole: repository error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: GrantRole - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GrantRole: user=%s now has roles=%v primary=%s", userID, user.Roles.Strings(), user.PrimaryRole)
	return models.FromDomainUser(user), nil
}

func (s *Service) getUser(ctx context.Context, op string, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("%s: user=%s not found", op, userID)
			return nil, ErrUserNotFound
		}
		s.logger.Error("%s: repository error for user=%s: %v", op, userID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return user, nil
}

func (s *Service) issue(user *domain.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("issue: user=%s: %v", user.ID, err)
		return nil, fmt.Errorf("%w: issue token: %v", ErrInternal, err)
	}
	return &models.AuthResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresAt:   expiresAt,
		User:        *models.FromDomainUser(user),
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return email, nil
}

func validatePassword(password string) error {
	if len([]rune(password)) < domain.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, domain.MinPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLength)
	}
	return nil
}

func validateName(first, last string) error {
	if first == "" {
		return fmt.Errorf("%w: firstName is required", ErrInvalidInput)
	}
	if len([]rune(first)) > domain.MaxNameLength || len([]rune(last)) > domain.MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, domain.MaxNameLength)
	}
	return nil
}

func validatePhone(phone *string) error {
	if phone != nil && len(*phone) > maxPhoneLength {
		return fmt.Errorf("%w: phone must be at most %d characters", ErrInvalidInput, maxPhoneLength)
	}
	return nil
}
