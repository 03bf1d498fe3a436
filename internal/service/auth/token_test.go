package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:          uuid.New(),
		Email:       "vet@clinic.test",
		PrimaryRole: domain.RoleVet,
		Roles:       domain.NewRoleSet(domain.RoleOwner, domain.RoleVet),
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "vet-booking", time.Hour)
	user := testUser()

	token, expiresAt, err := m.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	p, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.Equal(t, user.Email, p.Email)
	assert.Equal(t, domain.RoleVet, p.PrimaryRole)
	assert.True(t, p.Is(domain.RoleOwner))
	assert.True(t, p.Is(domain.RoleVet))
	assert.False(t, p.IsStaff())
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", "vet-booking", time.Hour)
	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", "vet-booking", time.Hour).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewTokenManager("secret", "someone-else", time.Hour).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenManager("secret", "vet-booking", time.Hour)
		expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := expired.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": uuid.NewString()}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		now := time.Now()
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			PrimaryRole: "ROOT",
			Roles:       []string{"ROOT"},
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   uuid.NewString(),
				Issuer:    "vet-booking",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.Parse(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
