package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/service/auth/models"
)

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.ProfileResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error
	GrantRole(ctx context.Context, userID uuid.UUID, req *models.GrantRoleRequest) (*models.ProfileResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
