package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

func setupRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

func TestRepository_Create_NormalizesEmail(t *testing.T) {
	repo, mock := setupRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "anna@example.com", "hash", "Anna", "", nil, "OWNER", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u, err := repo.Create(context.Background(), &domain.User{
		Email:        "  Anna@Example.COM ",
		PasswordHash: "hash",
		FirstName:    "Anna",
		PrimaryRole:  domain.RoleOwner,
		Roles:        domain.NewRoleSet(domain.RoleOwner),
	})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", u.Email)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), &domain.User{Email: "a@b.c", PrimaryRole: domain.RoleOwner})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRepository_GetByEmail_ParsesRoles(t *testing.T) {
	repo, mock := setupRepository(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash")).
		WithArgs("vet@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			id.String(), "vet@example.com", "hash", "Ivan", "Petrov", nil, "VET", "{OWNER,VET}", now, now,
		))

	u, err := repo.GetByEmail(context.Background(), "VET@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, domain.RoleVet, u.PrimaryRole)
	assert.True(t, u.Roles.Has(domain.RoleOwner))
	assert.True(t, u.Roles.Has(domain.RoleVet))
	assert.Nil(t, u.Phone)
}
