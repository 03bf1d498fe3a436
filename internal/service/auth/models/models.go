package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Request модели

// RegisterRequest регистрация владельца животного
type RegisterRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone,omitempty"`
}

// LoginRequest вход по email и паролю
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest частичное обновление профиля
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// ChangePasswordRequest смена пароля
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// GrantRoleRequest выдача роли
type GrantRoleRequest struct {
	Role string `json:"role"`
}

// Response модели

// ProfileResponse профиль пользователя
type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Phone       *string   `json:"phone,omitempty"`
	PrimaryRole string    `json:"primaryRole"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthResponse выданный токен и профиль
type AuthResponse struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	User        ProfileResponse `json:"user"`
}

// Методы конвертации

// FromDomainUser конвертирует domain модель в DTO
func FromDomainUser(u *domain.User) *ProfileResponse {
	if u == nil {
		return nil
	}
	return &ProfileResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		PrimaryRole: string(u.PrimaryRole),
		Roles:       u.Roles.Strings(),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
