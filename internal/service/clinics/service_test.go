package clinics

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	userRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-VetBookingService/internal/service/clinics/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
	"github.com/m04kA/SMC-VetBookingService/pkg/ptr"
)

type mockClinicRepo struct {
	mock.Mock
}

func (m *mockClinicRepo) Create(ctx context.Context, c *domain.Clinic) (*domain.Clinic, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Clinic), args.Error(1)
}

func (m *mockClinicRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Clinic), args.Error(1)
}

func (m *mockClinicRepo) List(ctx context.Context, f domain.ClinicFilter) ([]*domain.Clinic, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Clinic), args.Error(1)
}

func (m *mockClinicRepo) AddVet(ctx context.Context, clinicID, vetID uuid.UUID) error {
	return m.Called(ctx, clinicID, vetID).Error(0)
}

func (m *mockClinicRepo) ListVets(ctx context.Context, clinicID uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestList_NormalizesFilter(t *testing.T) {
	clinics := &mockClinicRepo{}
	svc := NewService(clinics, &mockUserRepo{}, logger.NewDiscard())

	clinics.On("List", mock.Anything, mock.MatchedBy(func(f domain.ClinicFilter) bool {
		return f.City != nil && *f.City == "Moscow" && f.Query == nil
	})).Return([]*domain.Clinic{}, nil).Once()

	resp, err := svc.List(context.Background(), &models.ListRequest{City: ptr.Ptr(" Moscow "), Query: ptr.Ptr("  ")})
	require.NoError(t, err)
	assert.NotNil(t, resp.Clinics)
	assert.Empty(t, resp.Clinics)
	clinics.AssertExpectations(t)
}

func TestGetByID_NotFound(t *testing.T) {
	clinics := &mockClinicRepo{}
	svc := NewService(clinics, &mockUserRepo{}, logger.NewDiscard())
	id := uuid.New()

	clinics.On("GetByID", mock.Anything, id).Return(nil, clinicRepo.ErrClinicNotFound).Once()

	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateClinicRequest
		wantErr error
	}{
		{
			name: "valid",
			req:  models.CreateClinicRequest{Name: "Happy Paws", Address: "Main st. 1", City: "Kazan", Email: ptr.Ptr("info@paws.test")},
		},
		{
			name:    "missing name",
			req:     models.CreateClinicRequest{Address: "Main st. 1", City: "Kazan"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing city",
			req:     models.CreateClinicRequest{Name: "Happy Paws", Address: "Main st. 1"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad email",
			req:     models.CreateClinicRequest{Name: "Happy Paws", Address: "Main st. 1", City: "Kazan", Email: ptr.Ptr("nope")},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clinics := &mockClinicRepo{}
			svc := NewService(clinics, &mockUserRepo{}, logger.NewDiscard())
			if tt.wantErr == nil {
				clinics.On("Create", mock.Anything, mock.AnythingOfType("*domain.Clinic")).
					Return(&domain.Clinic{ID: uuid.New(), Name: tt.req.Name, City: tt.req.City}, nil).Once()
			}

			resp, err := svc.Create(context.Background(), &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				clinics.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Happy Paws", resp.Name)
		})
	}
}

func TestAddVet(t *testing.T) {
	clinicID := uuid.New()
	vetID := uuid.New()
	clinic := &domain.Clinic{ID: clinicID, Name: "Happy Paws"}
	vet := &domain.User{ID: vetID, FirstName: "Anna", PrimaryRole: domain.RoleVet, Roles: domain.NewRoleSet(domain.RoleOwner, domain.RoleVet)}

	t.Run("added", func(t *testing.T) {
		clinics := &mockClinicRepo{}
		users := &mockUserRepo{}
		svc := NewService(clinics, users, logger.NewDiscard())

		clinics.On("GetByID", mock.Anything, clinicID).Return(clinic, nil)
		users.On("GetByID", mock.Anything, vetID).Return(vet, nil).Once()
		clinics.On("AddVet", mock.Anything, clinicID, vetID).Return(nil).Once()
		clinics.On("ListVets", mock.Anything, clinicID).Return([]*domain.User{vet}, nil).Once()

		resp, err := svc.AddVet(context.Background(), clinicID, &models.AddVetRequest{VetID: vetID})
		require.NoError(t, err)
		require.Len(t, resp.Vets, 1)
		assert.Equal(t, vetID, resp.Vets[0].ID)
	})

	t.Run("user without vet role", func(t *testing.T) {
		clinics := &mockClinicRepo{}
		users := &mockUserRepo{}
		svc := NewService(clinics, users, logger.NewDiscard())

		clinics.On("GetByID", mock.Anything, clinicID).Return(clinic, nil)
		users.On("GetByID", mock.Anything, vetID).
			Return(&domain.User{ID: vetID, PrimaryRole: domain.RoleOwner, Roles: domain.NewRoleSet(domain.RoleOwner)}, nil).Once()

		_, err := svc.AddVet(context.Background(), clinicID, &models.AddVetRequest{VetID: vetID})
		assert.ErrorIs(t, err, ErrNotAVet)
		clinics.AssertNotCalled(t, "AddVet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already added", func(t *testing.T) {
		clinics := &mockClinicRepo{}
		users := &mockUserRepo{}
		svc := NewService(clinics, users, logger.NewDiscard())

		clinics.On("GetByID", mock.Anything, clinicID).Return(clinic, nil)
		users.On("GetByID", mock.Anything, vetID).Return(vet, nil).Once()
		clinics.On("AddVet", mock.Anything, clinicID, vetID).Return(clinicRepo.ErrVetAlreadyAdded).Once()

		_, err := svc.AddVet(context.Background(), clinicID, &models.AddVetRequest{VetID: vetID})
		assert.ErrorIs(t, err, ErrVetAlreadyAdded)
	})

	t.Run("unknown user", func(t *testing.T) {
		clinics := &mockClinicRepo{}
		users := &mockUserRepo{}
		svc := NewService(clinics, users, logger.NewDiscard())

		clinics.On("GetByID", mock.Anything, clinicID).Return(clinic, nil)
		users.On("GetByID", mock.Anything, vetID).Return(nil, userRepo.ErrUserNotFound).Once()

		_, err := svc.AddVet(context.Background(), clinicID, &models.AddVetRequest{VetID: vetID})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("repository failure", func(t *testing.T) {
		clinics := &mockClinicRepo{}
		svc := NewService(clinics, &mockUserRepo{}, logger.NewDiscard())

		clinics.On("GetByID", mock.Anything, clinicID).Return(nil, errors.New("connection reset"))

		_, err := svc.AddVet(context.Background(), clinicID, &models.AddVetRequest{VetID: vetID})
		assert.ErrorIs(t, err, ErrInternal)
	})
}
