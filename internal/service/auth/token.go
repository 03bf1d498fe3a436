package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// Claims содержимое access токена
type Claims struct {
	Email       string   `json:"email"`
	PrimaryRole string   `json:"primaryRole"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет HS256 токены
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager создает менеджер токенов
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue подписывает токен для пользователя
func (m *TokenManager) Issue(user *domain.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		Email:       user.Email,
		PrimaryRole: string(user.PrimaryRole),
		Roles:       user.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse проверяет подпись, срок и издателя, возвращает вызывающего
func (m *TokenManager) Parse(tokenString string) (domain.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	roles, err := domain.RoleSetFromStrings(claims.Roles)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	primary, err := domain.ParseRole(claims.PrimaryRole)
	if err != nil || !roles.Has(primary) {
		return domain.Principal{}, fmt.Errorf("%w: bad primary role", ErrInvalidToken)
	}

	return domain.Principal{
		UserID:      userID,
		Email:       claims.Email,
		PrimaryRole: primary,
		Roles:       roles,
	}, nil
}
