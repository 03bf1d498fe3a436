package create_appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	createAppointment "github.com/m04kA/SMC-VetBookingService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *createAppointment.Request) (*createAppointment.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*createAppointment.Response), args.Error(1)
}

var owner = domain.Principal{UserID: uuid.New(), PrimaryRole: domain.RoleOwner, Roles: domain.NewRoleSet(domain.RoleOwner)}

func newRequest(t *testing.T, body string, withPrincipal bool) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body))
	if withPrincipal {
		r = r.WithContext(middleware.WithPrincipal(r.Context(), owner))
	}
	return r
}

func validBody(start time.Time) string {
	return fmt.Sprintf(`{"clinicId":%q,"animalId":%q,"vetId":%q,"startAt":%q}`,
		uuid.NewString(), uuid.NewString(), uuid.NewString(), start.Format(time.RFC3339))
}

func TestHandle_Created(t *testing.T) {
	uc := &mockUseCase{}
	h := NewHandler(uc, logger.NewDiscard())
	start := time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createAppointment.Request) bool {
		return req.Principal.UserID == owner.UserID && req.StartAt.Equal(start)
	})).Return(&createAppointment.Response{
		ID:      uuid.New(),
		Status:  string(domain.AppointmentPending),
		StartAt: start,
		EndAt:   start.Add(30 * time.Minute),
	}, nil).Once()

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(t, validBody(start), true))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PENDING", body.Status)
	assert.Equal(t, "2026-11-02T10:30:00Z", body.EndAt)
	uc.AssertExpectations(t)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "slot booked", err: createAppointment.ErrSlotAlreadyBooked, want: http.StatusConflict},
		{name: "vet blocked", err: createAppointment.ErrVetUnavailable, want: http.StatusConflict},
		{name: "lock held", err: createAppointment.ErrBookingInProgress, want: http.StatusConflict},
		{name: "foreign animal", err: createAppointment.ErrForbidden, want: http.StatusForbidden},
		{name: "unknown clinic", err: createAppointment.ErrClinicNotFound, want: http.StatusNotFound},
		{name: "unknown animal", err: createAppointment.ErrAnimalNotFound, want: http.StatusNotFound},
		{name: "past start", err: createAppointment.ErrStartInPast, want: http.StatusBadRequest},
		{name: "vet elsewhere", err: createAppointment.ErrVetNotInClinic, want: http.StatusBadRequest},
		{name: "wrapped internal", err: fmt.Errorf("%w: boom", createAppointment.ErrInternal), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			h := NewHandler(uc, logger.NewDiscard())
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest(t, validBody(time.Now().Add(time.Hour)), true))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandle_BadRequest(t *testing.T) {
	uc := &mockUseCase{}
	h := NewHandler(uc, logger.NewDiscard())

	t.Run("malformed json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Handle(rec, newRequest(t, `{"clinicId":`, true))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Handle(rec, newRequest(t, `{"price":100}`, true))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Handle(rec, newRequest(t, validBody(time.Now()), false))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
