package reminders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	reminderService "github.com/m04kA/SMC-VetBookingService/internal/service/reminders"
	"github.com/m04kA/SMC-VetBookingService/internal/service/reminders/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) PlanAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.InstanceListResponse, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InstanceListResponse), args.Error(1)
}

func (m *mockService) RunDue(ctx context.Context, now time.Time) (*models.RunDueResponse, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunDueResponse), args.Error(1)
}

func (m *mockService) CreateRule(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RuleResponse), args.Error(1)
}

func (m *mockService) ListRules(ctx context.Context) (*models.RuleListResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RuleListResponse), args.Error(1)
}

func newRouter(svc *mockService, now time.Time) *mux.Router {
	h := NewHandler(svc, logger.NewDiscard())
	h.now = func() time.Time { return now }

	r := mux.NewRouter()
	r.HandleFunc("/api/reminders/plan/appointment/{id}", h.Plan).Methods(http.MethodPost)
	r.HandleFunc("/api/reminders/run-due", h.RunDue).Methods(http.MethodPost)
	r.HandleFunc("/api/reminders/rules", h.CreateRule).Methods(http.MethodPost)
	return r
}

func TestRunDue_UsesHandlerClock(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := &mockService{}
	svc.On("RunDue", mock.Anything, now).Return(&models.RunDueResponse{Processed: 3, Sent: 2, Failed: 1}, nil).Once()

	rec := httptest.NewRecorder()
	newRouter(svc, now).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reminders/run-due", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"processed":3,"sent":2,"failed":1}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestRunDue_InProgress(t *testing.T) {
	svc := &mockService{}
	svc.On("RunDue", mock.Anything, mock.Anything).Return(nil, reminderService.ErrRunInProgress).Once()

	rec := httptest.NewRecorder()
	newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reminders/run-due", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPlan(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{name: "planned", path: id.String(), want: http.StatusOK},
		{name: "unknown appointment", path: id.String(), err: reminderService.ErrAppointmentNotFound, want: http.StatusNotFound},
		{name: "repository failure", path: id.String(), err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "invalid id", path: "42", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			if tt.err != nil {
				svc.On("PlanAppointment", mock.Anything, id).Return(nil, tt.err).Once()
			} else {
				svc.On("PlanAppointment", mock.Anything, id).Return(&models.InstanceListResponse{Reminders: []models.InstanceResponse{}}, nil).Maybe()
			}

			rec := httptest.NewRecorder()
			newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reminders/plan/appointment/"+tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCreateRule(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &mockService{}
		svc.On("CreateRule", mock.Anything, &models.CreateRuleRequest{Name: "Day before", Scope: "APPOINTMENT", OffsetDays: -1, SendInApp: true}).
			Return(&models.RuleResponse{ID: uuid.New(), OffsetDays: -1}, nil).Once()

		body := `{"name":"Day before","scope":"APPOINTMENT","offsetDays":-1,"sendInApp":true}`
		rec := httptest.NewRecorder()
		newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reminders/rules", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc := &mockService{}
		svc.On("CreateRule", mock.Anything, mock.Anything).Return(nil, reminderService.ErrInvalidInput).Once()

		rec := httptest.NewRecorder()
		newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reminders/rules", strings.NewReader(`{"scope":"CLINIC"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("broken json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(&mockService{}, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reminders/rules", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
