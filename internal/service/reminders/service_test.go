package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/infra/lock"
	animalRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/animal"
	appointmentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/appointment"
	reminderRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/reminder"
	"github.com/m04kA/SMC-VetBookingService/internal/service/reminders/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
)

// memReminderRepo хранилище напоминаний в памяти с уникальностью по натуральному ключу
type memReminderRepo struct {
	rules     []*domain.ReminderRule
	instances []*domain.ReminderInstance
	markErr   error
}

func (r *memReminderRepo) CreateRule(_ context.Context, rule *domain.ReminderRule) (*domain.ReminderRule, error) {
	r.rules = append(r.rules, rule)
	return rule, nil
}

func (r *memReminderRepo) GetRule(_ context.Context, id uuid.UUID) (*domain.ReminderRule, error) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, reminderRepo.ErrRuleNotFound
}

func (r *memReminderRepo) ListRules(_ context.Context) ([]*domain.ReminderRule, error) {
	return r.rules, nil
}

func (r *memReminderRepo) ListActiveRules(_ context.Context, scope domain.ReminderScope) ([]*domain.ReminderRule, error) {
	var out []*domain.ReminderRule
	for _, rule := range r.rules {
		if rule.IsActive && rule.Scope == scope {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *memReminderRepo) CreateInstanceIfAbsent(_ context.Context, inst *domain.ReminderInstance) (bool, error) {
	for _, existing := range r.instances {
		if existing.RuleID == inst.RuleID && existing.AppointmentID == inst.AppointmentID && existing.UserID == inst.UserID {
			return false, nil
		}
	}
	r.instances = append(r.instances, inst)
	return true, nil
}

func (r *memReminderRepo) ListByAppointment(_ context.Context, appointmentID uuid.UUID) ([]*domain.ReminderInstance, error) {
	var out []*domain.ReminderInstance
	for _, inst := range r.instances {
		if inst.AppointmentID == appointmentID {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (r *memReminderRepo) FetchDue(_ context.Context, now time.Time, limit int) ([]*domain.ReminderInstance, error) {
	var out []*domain.ReminderInstance
	for _, inst := range r.instances {
		if inst.Status == domain.ReminderScheduled && !inst.SendAt.After(now) && len(out) < limit {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (r *memReminderRepo) find(id uuid.UUID) *domain.ReminderInstance {
	for _, inst := range r.instances {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}

func (r *memReminderRepo) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	inst := r.find(id)
	if inst == nil || inst.Status != domain.ReminderScheduled {
		return reminderRepo.ErrInstanceNotScheduled
	}
	inst.Status = domain.ReminderSent
	inst.SentAt = &sentAt
	return nil
}

func (r *memReminderRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	if r.markErr != nil {
		return r.markErr
	}
	inst := r.find(id)
	if inst == nil || inst.Status != domain.ReminderScheduled {
		return reminderRepo.ErrInstanceNotScheduled
	}
	inst.Status = domain.ReminderFailed
	inst.LastError = &reason
	return nil
}

func (r *memReminderRepo) CancelScheduled(_ context.Context, appointmentID uuid.UUID) (int64, error) {
	var n int64
	for _, inst := range r.instances {
		if inst.AppointmentID == appointmentID && inst.Status == domain.ReminderScheduled {
			inst.Status = domain.ReminderCancelled
			n++
		}
	}
	return n, nil
}

type stubAppointments map[uuid.UUID]*domain.Appointment

func (s stubAppointments) GetByID(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	if a, ok := s[id]; ok {
		return a, nil
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

type stubAnimals struct{ animal *domain.Animal }

func (s stubAnimals) GetByID(_ context.Context, _ uuid.UUID) (*domain.Animal, error) {
	if s.animal == nil {
		return nil, animalRepo.ErrAnimalNotFound
	}
	return s.animal, nil
}

type stubClinics struct{ clinic *domain.Clinic }

func (s stubClinics) GetByID(_ context.Context, _ uuid.UUID) (*domain.Clinic, error) {
	return s.clinic, nil
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) DispatchReminder(ctx context.Context, rule *domain.ReminderRule, inst *domain.ReminderInstance) error {
	args := m.Called(ctx, rule, inst)
	return args.Error(0)
}

type countingRecorder map[string]int

func (c countingRecorder) ReminderProcessed(status string) {
	c[status]++
}

type lockerFunc func(ctx context.Context, key string, fn func(ctx context.Context) error) error

func (f lockerFunc) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return f(ctx, key, fn)
}

type fixture struct {
	repo       *memReminderRepo
	dispatcher *mockDispatcher
	recorder   countingRecorder
	svc        *Service
	appt       *domain.Appointment
	owner      uuid.UUID
}

func newFixture(t *testing.T, locker Locker, batchSize int) *fixture {
	t.Helper()
	return newFixtureWithAnimal(t, locker, batchSize, &domain.Animal{OwnerID: uuid.New(), Name: "Rex"})
}

// newFixtureWithAnimal запись создана ассистентом, а не владельцем животного
func newFixtureWithAnimal(t *testing.T, locker Locker, batchSize int, animal *domain.Animal) *fixture {
	t.Helper()

	appt := &domain.Appointment{
		ID:        uuid.New(),
		ClinicID:  uuid.New(),
		AnimalID:  uuid.New(),
		VetID:     uuid.New(),
		CreatedBy: uuid.New(),
		Status:    domain.AppointmentPending,
		StartAt:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		EndAt:     time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC),
	}

	repo := &memReminderRepo{
		rules: []*domain.ReminderRule{
			{ID: uuid.New(), Name: "day before", Scope: domain.ReminderScopeAppointment, OffsetDays: -1, SendInApp: true, IsActive: true},
			{ID: uuid.New(), Name: "same day", Scope: domain.ReminderScopeAppointment, OffsetDays: 0, SendEmail: true, IsActive: true},
			{ID: uuid.New(), Name: "disabled", Scope: domain.ReminderScopeAppointment, OffsetDays: -2, SendEmail: true, IsActive: false},
		},
	}

	f := &fixture{
		repo:       repo,
		dispatcher: &mockDispatcher{},
		recorder:   countingRecorder{},
		appt:       appt,
	}
	if animal != nil {
		animal.ID = appt.AnimalID
		f.owner = animal.OwnerID
	}
	f.svc = NewService(
		repo,
		stubAppointments{appt.ID: appt},
		stubAnimals{animal: animal},
		stubClinics{clinic: &domain.Clinic{Name: "Happy Paws"}},
		f.dispatcher,
		locker,
		f.recorder,
		batchSize,
		logger.NewDiscard(),
	)
	return f
}

func TestPlan_OneInstancePerActiveRule(t *testing.T) {
	f := newFixture(t, nil, 10)

	instances, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	byRule := map[uuid.UUID]*domain.ReminderInstance{}
	for _, inst := range instances {
		byRule[inst.RuleID] = inst
		assert.Equal(t, f.owner, inst.UserID)
		assert.NotEqual(t, f.appt.CreatedBy, inst.UserID)
		assert.Equal(t, domain.ReminderScheduled, inst.Status)
	}
	assert.Equal(t, f.appt.StartAt.AddDate(0, 0, -1), byRule[f.repo.rules[0].ID].SendAt)
	assert.Equal(t, f.appt.StartAt, byRule[f.repo.rules[1].ID].SendAt)

	var payload domain.ReminderPayload
	require.NoError(t, json.Unmarshal(instances[0].Payload, &payload))
	assert.Equal(t, "Rex", payload.AnimalName)
	assert.Equal(t, "Happy Paws", payload.ClinicName)
	assert.True(t, f.appt.StartAt.Equal(payload.StartAt))
}

func TestPlan_MissingAnimalFallsBackToCreator(t *testing.T) {
	f := newFixtureWithAnimal(t, nil, 10, nil)

	instances, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	for _, inst := range instances {
		assert.Equal(t, f.appt.CreatedBy, inst.UserID)
	}
}

func TestPlan_Idempotent(t *testing.T) {
	f := newFixture(t, nil, 10)

	first, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)
	second, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)

	assert.Len(t, second, len(first))
	assert.Len(t, f.repo.instances, 2)
}

func TestPlan_UnknownAppointment(t *testing.T) {
	f := newFixture(t, nil, 10)

	_, err := f.svc.Plan(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRunDue_PartialFailureDoesNotBlockOthers(t *testing.T) {
	f := newFixture(t, nil, 10)
	_, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)

	dayBefore, sameDay := f.repo.rules[0], f.repo.rules[1]
	f.dispatcher.On("DispatchReminder", mock.Anything, dayBefore, mock.Anything).Return(errors.New("smtp down")).Once()
	f.dispatcher.On("DispatchReminder", mock.Anything, sameDay, mock.Anything).Return(nil).Once()

	res, err := f.svc.RunDue(context.Background(), f.appt.StartAt)
	require.NoError(t, err)

	assert.Equal(t, &models.RunDueResponse{Processed: 2, Sent: 1, Failed: 1}, res)
	assert.Equal(t, 1, f.recorder[metricSent])
	assert.Equal(t, 1, f.recorder[metricFailed])
	f.dispatcher.AssertExpectations(t)

	for _, inst := range f.repo.instances {
		if inst.RuleID == dayBefore.ID {
			assert.Equal(t, domain.ReminderFailed, inst.Status)
			require.NotNil(t, inst.LastError)
			assert.Contains(t, *inst.LastError, "smtp down")
		} else {
			assert.Equal(t, domain.ReminderSent, inst.Status)
			assert.NotNil(t, inst.SentAt)
		}
	}
}

func TestRunDue_OnlyDueInstances(t *testing.T) {
	f := newFixture(t, nil, 10)
	_, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)

	f.dispatcher.On("DispatchReminder", mock.Anything, f.repo.rules[0], mock.Anything).Return(nil).Once()

	// Напоминание в день приёма ещё не наступило
	res, err := f.svc.RunDue(context.Background(), f.appt.StartAt.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Sent)
	f.dispatcher.AssertExpectations(t)

	// Повторный запуск ничего не отправляет
	res, err = f.svc.RunDue(context.Background(), f.appt.StartAt.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
}

func TestRunDue_BatchesUntilDrained(t *testing.T) {
	f := newFixture(t, nil, 1)
	_, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)

	f.dispatcher.On("DispatchReminder", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.RunDue(context.Background(), f.appt.StartAt)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Sent)
}

func TestRunDue_StuckInstancesDoNotLoop(t *testing.T) {
	f := newFixture(t, nil, 1)
	_, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)

	f.repo.markErr = errors.New("connection reset")
	f.dispatcher.On("DispatchReminder", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.RunDue(context.Background(), f.appt.StartAt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 1, f.recorder[metricSkipped])
}

func TestRunDue_LockOutcomes(t *testing.T) {
	t.Run("held by another run", func(t *testing.T) {
		f := newFixture(t, lockerFunc(func(context.Context, string, func(context.Context) error) error {
			return lock.ErrLockNotAcquired
		}), 10)

		_, err := f.svc.RunDue(context.Background(), time.Now())
		assert.ErrorIs(t, err, ErrRunInProgress)
	})

	t.Run("backend down runs unlocked", func(t *testing.T) {
		var gotKey string
		f := newFixture(t, lockerFunc(func(_ context.Context, key string, _ func(context.Context) error) error {
			gotKey = key
			return lock.ErrLockBackend
		}), 10)
		_, err := f.svc.Plan(context.Background(), f.appt.ID)
		require.NoError(t, err)
		f.dispatcher.On("DispatchReminder", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		res, err := f.svc.RunDue(context.Background(), f.appt.StartAt)
		require.NoError(t, err)
		assert.Equal(t, lock.ReminderRunKey, gotKey)
		assert.Equal(t, 2, res.Sent)
	})
}

func TestCancelForAppointment(t *testing.T) {
	f := newFixture(t, nil, 10)
	_, err := f.svc.Plan(context.Background(), f.appt.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelForAppointment(context.Background(), f.appt.ID))

	for _, inst := range f.repo.instances {
		assert.Equal(t, domain.ReminderCancelled, inst.Status)
	}

	res, err := f.svc.RunDue(context.Background(), f.appt.StartAt)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
}

func TestCreateRule_Validation(t *testing.T) {
	f := newFixture(t, nil, 10)
	inactive := false

	tests := []struct {
		name    string
		req     models.CreateRuleRequest
		wantErr bool
	}{
		{"valid defaults scope", models.CreateRuleRequest{Name: "week before", OffsetDays: -7, SendEmail: true}, false},
		{"valid inactive", models.CreateRuleRequest{Name: "x", Scope: "appointment", SendInApp: true, IsActive: &inactive}, false},
		{"empty name", models.CreateRuleRequest{Name: "  ", SendEmail: true}, true},
		{"no channel", models.CreateRuleRequest{Name: "x"}, true},
		{"bad scope", models.CreateRuleRequest{Name: "x", Scope: "VACCINATION", SendEmail: true}, true},
		{"offset too large", models.CreateRuleRequest{Name: "x", OffsetDays: -400, SendEmail: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.CreateRule(context.Background(), &tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(domain.ReminderScopeAppointment), resp.Scope)
			assert.Equal(t, tt.req.IsActive == nil, resp.IsActive)
		})
	}
}
