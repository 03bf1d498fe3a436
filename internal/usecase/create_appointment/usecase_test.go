package create_appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/infra/lock"
	animalRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/animal"
	appointmentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
)

// fakeAppointmentRepo хранит приёмы в памяти и повторяет частичный уникальный индекс (vet_id, start_at)
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	items        []*domain.Appointment
	hideFromList bool // эмулирует гонку: конкурентная вставка ещё не видна при проверке
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		active := existing.Status == domain.AppointmentPending || existing.Status == domain.AppointmentConfirmed
		if active && existing.VetID == a.VetID && existing.StartAt.Equal(a.StartAt) {
			return nil, appointmentRepo.ErrSlotTaken
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.items = append(r.items, a)
	return a, nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Appointment, 0)
	if r.hideFromList {
		return out, nil
	}
	window := domain.Interval{Start: *filter.From, End: *filter.To}
	for _, a := range r.items {
		if filter.VetID != nil && a.VetID != *filter.VetID {
			continue
		}
		if window.Overlaps(a.Interval()) {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubClinicRepo struct {
	vets map[uuid.UUID]bool
}

func (r *stubClinicRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Clinic, error) {
	return &domain.Clinic{ID: id, Name: "Happy Paws"}, nil
}

func (r *stubClinicRepo) IsVetOfClinic(_ context.Context, _, vetID uuid.UUID) (bool, error) {
	return r.vets[vetID], nil
}

type stubAnimalRepo struct {
	animals map[uuid.UUID]*domain.Animal
}

func (r *stubAnimalRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Animal, error) {
	if a, ok := r.animals[id]; ok {
		return a, nil
	}
	return nil, animalRepo.ErrAnimalNotFound
}

type stubAgendaRepo struct {
	blocks []*domain.AgendaBlock
}

func (r *stubAgendaRepo) List(_ context.Context, _ domain.AgendaBlockFilter) ([]*domain.AgendaBlock, error) {
	return r.blocks, nil
}

type inlineTxManager struct {
	err error
}

func (m *inlineTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

type mockPlanner struct{ mock.Mock }

func (m *mockPlanner) Plan(ctx context.Context, appointmentID uuid.UUID) ([]*domain.ReminderInstance, error) {
	args := m.Called(ctx, appointmentID)
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) AppointmentRequested(ctx context.Context, appointment *domain.Appointment) {
	m.Called(ctx, appointment)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type lockerFunc func(ctx context.Context, key string, fn func(ctx context.Context) error) error

func (f lockerFunc) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return f(ctx, key, fn)
}

type fixture struct {
	owner, vet, animal, clinic uuid.UUID
	appointments               *fakeAppointmentRepo
	agenda                     *stubAgendaRepo
	tx                         *inlineTxManager
	planner                    *mockPlanner
	notifier                   *mockNotifier
	locker                     Locker
	now                        time.Time
}

func newFixture() *fixture {
	f := &fixture{
		owner:        uuid.New(),
		vet:          uuid.New(),
		animal:       uuid.New(),
		clinic:       uuid.New(),
		appointments: &fakeAppointmentRepo{},
		agenda:       &stubAgendaRepo{},
		tx:           &inlineTxManager{},
		planner:      &mockPlanner{},
		notifier:     &mockNotifier{},
		locker:       lock.NoopLocker{},
		now:          time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	f.planner.On("Plan", mock.Anything, mock.Anything).Return(nil, nil)
	f.notifier.On("AppointmentRequested", mock.Anything, mock.Anything).Return()
	return f
}

func (f *fixture) useCase() *UseCase {
	clinics := &stubClinicRepo{vets: map[uuid.UUID]bool{f.vet: true}}
	animals := &stubAnimalRepo{animals: map[uuid.UUID]*domain.Animal{
		f.animal: {ID: f.animal, OwnerID: f.owner, Name: "Rex"},
	}}
	return NewUseCase(f.appointments, clinics, animals, f.agenda, f.tx, f.locker, f.planner, f.notifier, logger.NewDiscard()).
		WithTimeProvider(fixedTime{now: f.now})
}

func (f *fixture) request(start time.Time) *Request {
	return &Request{
		Principal: domain.Principal{UserID: f.owner, Roles: domain.NewRoleSet(domain.RoleOwner)},
		ClinicID:  f.clinic,
		AnimalID:  f.animal,
		VetID:     f.vet,
		StartAt:   start,
	}
}

var nineAM = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestUseCase_Execute_CreatesPendingAppointment(t *testing.T) {
	f := newFixture()

	resp, err := f.useCase().Execute(context.Background(), f.request(nineAM))
	require.NoError(t, err)

	assert.Equal(t, string(domain.AppointmentPending), resp.Status)
	assert.Equal(t, nineAM.Add(30*time.Minute), resp.EndAt)
	assert.Equal(t, f.owner, resp.CreatedBy)
	f.planner.AssertCalled(t, "Plan", mock.Anything, resp.ID)
	f.notifier.AssertNumberOfCalls(t, "AppointmentRequested", 1)
}

func TestUseCase_Execute_SameStartTwiceFailsSecond(t *testing.T) {
	f := newFixture()
	uc := f.useCase()

	_, err := uc.Execute(context.Background(), f.request(nineAM))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), f.request(nineAM))
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.Len(t, f.appointments.items, 1)
}

func TestUseCase_Execute_RaceIsResolvedByUniqueIndex(t *testing.T) {
	f := newFixture()
	f.appointments.hideFromList = true
	uc := f.useCase()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), f.request(nineAM))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	}
	assert.Equal(t, 1, succeeded)
}

func TestUseCase_Execute_OverlapWithDifferentStart(t *testing.T) {
	f := newFixture()
	uc := f.useCase()

	_, err := uc.Execute(context.Background(), f.request(nineAM))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), f.request(nineAM.Add(15*time.Minute)))
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)

	_, err = uc.Execute(context.Background(), f.request(nineAM.Add(30*time.Minute)))
	assert.NoError(t, err)
}

func TestUseCase_Execute_RejectedAppointmentFreesTime(t *testing.T) {
	f := newFixture()
	f.appointments.items = append(f.appointments.items, &domain.Appointment{
		ID: uuid.New(), VetID: f.vet, Status: domain.AppointmentRejected,
		StartAt: nineAM, EndAt: nineAM.Add(30 * time.Minute),
	})

	_, err := f.useCase().Execute(context.Background(), f.request(nineAM))
	assert.NoError(t, err)
}

func TestUseCase_Execute_AgendaBlock(t *testing.T) {
	f := newFixture()
	f.agenda.blocks = []*domain.AgendaBlock{{VetID: f.vet, StartAt: nineAM.Add(-time.Hour), EndAt: nineAM.Add(10 * time.Minute)}}

	_, err := f.useCase().Execute(context.Background(), f.request(nineAM))
	assert.ErrorIs(t, err, ErrVetUnavailable)
}

func TestUseCase_Execute_Validation(t *testing.T) {
	t.Run("past start", func(t *testing.T) {
		f := newFixture()
		_, err := f.useCase().Execute(context.Background(), f.request(f.now.Add(-time.Minute)))
		assert.ErrorIs(t, err, ErrStartInPast)
	})

	t.Run("someone else's animal", func(t *testing.T) {
		f := newFixture()
		req := f.request(nineAM)
		req.Principal = domain.Principal{UserID: uuid.New(), Roles: domain.NewRoleSet(domain.RoleOwner)}
		_, err := f.useCase().Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("assistant books for owner", func(t *testing.T) {
		f := newFixture()
		req := f.request(nineAM)
		req.Principal = domain.Principal{UserID: uuid.New(), Roles: domain.NewRoleSet(domain.RoleAssistant)}
		_, err := f.useCase().Execute(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("vet outside clinic", func(t *testing.T) {
		f := newFixture()
		req := f.request(nineAM)
		req.VetID = uuid.New()
		_, err := f.useCase().Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrVetNotInClinic)
	})

	t.Run("unknown animal", func(t *testing.T) {
		f := newFixture()
		req := f.request(nineAM)
		req.AnimalID = uuid.New()
		_, err := f.useCase().Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrAnimalNotFound)
	})

	t.Run("missing vet", func(t *testing.T) {
		f := newFixture()
		req := f.request(nineAM)
		req.VetID = uuid.Nil
		_, err := f.useCase().Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUseCase_Execute_LockOutcomes(t *testing.T) {
	t.Run("lock held elsewhere", func(t *testing.T) {
		f := newFixture()
		f.locker = lockerFunc(func(context.Context, string, func(context.Context) error) error {
			return lock.ErrLockNotAcquired
		})
		_, err := f.useCase().Execute(context.Background(), f.request(nineAM))
		assert.ErrorIs(t, err, ErrBookingInProgress)
	})

	t.Run("backend down falls back to database", func(t *testing.T) {
		f := newFixture()
		f.locker = lockerFunc(func(context.Context, string, func(context.Context) error) error {
			return lock.ErrLockBackend
		})
		_, err := f.useCase().Execute(context.Background(), f.request(nineAM))
		assert.NoError(t, err)
		assert.Len(t, f.appointments.items, 1)
	})
}

func TestUseCase_Execute_SerializationFailure(t *testing.T) {
	f := newFixture()
	f.tx.err = &pq.Error{Code: "40001"}

	_, err := f.useCase().Execute(context.Background(), f.request(nineAM))
	assert.ErrorIs(t, err, ErrBookingInProgress)
}

func TestUseCase_Execute_PlannerFailureIsNotSurfaced(t *testing.T) {
	f := newFixture()
	f.planner = &mockPlanner{}
	f.planner.On("Plan", mock.Anything, mock.Anything).Return(nil, errors.New("rules table missing"))

	_, err := f.useCase().Execute(context.Background(), f.request(nineAM))
	assert.NoError(t, err)
}
