package slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	"github.com/m04kA/SMC-VetBookingService/internal/service/slots/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
	"github.com/m04kA/SMC-VetBookingService/pkg/ptr"
)

type mockSlotRepo struct {
	mock.Mock
}

func (m *mockSlotRepo) Create(ctx context.Context, s *domain.TimeSlot) (*domain.TimeSlot, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}

type mockClinicRepo struct {
	mock.Mock
}

func (m *mockClinicRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Clinic), args.Error(1)
}

func (m *mockClinicRepo) IsVetOfClinic(ctx context.Context, clinicID, vetID uuid.UUID) (bool, error) {
	args := m.Called(ctx, clinicID, vetID)
	return args.Bool(0), args.Error(1)
}

func TestCreate(t *testing.T) {
	clinicID := uuid.New()
	vetID := uuid.New()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("shared slot defaults to available", func(t *testing.T) {
		slots := &mockSlotRepo{}
		clinics := &mockClinicRepo{}
		svc := NewService(slots, clinics, logger.NewDiscard())

		clinics.On("GetByID", mock.Anything, clinicID).Return(&domain.Clinic{ID: clinicID}, nil).Once()
		slots.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.TimeSlot) bool {
			return s.IsAvailable && s.VetID == nil && s.ClinicID == clinicID
		})).Return(&domain.TimeSlot{ID: uuid.New(), ClinicID: clinicID, StartAt: start, EndAt: start.Add(30 * time.Minute), IsAvailable: true}, nil).Once()

		resp, err := svc.Create(context.Background(), &models.CreateSlotRequest{
			ClinicID: clinicID,
			StartAt:  start,
			EndAt:    start.Add(30 * time.Minute),
		})
		require.NoError(t, err)
		assert.Equal(t, 30, resp.DurationMinutes)
		clinics.AssertNotCalled(t, "IsVetOfClinic", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("vet slot checks membership", func(t *testing.T) {
		slots := &mockSlotRepo{}
		clinics := &mockClinicRepo{}
		svc := NewService(slots, clinics, logger.NewDiscard())

		clinics.On("GetByID", mock.Anything, clinicID).Return(&domain.Clinic{ID: clinicID}, nil).Once()
		clinics.On("IsVetOfClinic", mock.Anything, clinicID, vetID).Return(false, nil).Once()

		_, err := svc.Create(context.Background(), &models.CreateSlotRequest{
			ClinicID:    clinicID,
			VetID:       &vetID,
			StartAt:     start,
			EndAt:       start.Add(30 * time.Minute),
			IsAvailable: ptr.Ptr(false),
		})
		assert.ErrorIs(t, err, ErrVetNotInClinic)
		slots.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("start not before end", func(t *testing.T) {
		svc := NewService(&mockSlotRepo{}, &mockClinicRepo{}, logger.NewDiscard())

		_, err := svc.Create(context.Background(), &models.CreateSlotRequest{ClinicID: clinicID, StartAt: start, EndAt: start})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)

		_, err = svc.Create(context.Background(), &models.CreateSlotRequest{ClinicID: clinicID, StartAt: start, EndAt: start.Add(-time.Minute)})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("unknown clinic", func(t *testing.T) {
		clinics := &mockClinicRepo{}
		svc := NewService(&mockSlotRepo{}, clinics, logger.NewDiscard())
		clinics.On("GetByID", mock.Anything, clinicID).Return(nil, clinicRepo.ErrClinicNotFound).Once()

		_, err := svc.Create(context.Background(), &models.CreateSlotRequest{ClinicID: clinicID, StartAt: start, EndAt: start.Add(time.Hour)})
		assert.ErrorIs(t, err, ErrClinicNotFound)
	})

	t.Run("missing clinic id", func(t *testing.T) {
		svc := NewService(&mockSlotRepo{}, &mockClinicRepo{}, logger.NewDiscard())

		_, err := svc.Create(context.Background(), &models.CreateSlotRequest{StartAt: start, EndAt: start.Add(time.Hour)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
