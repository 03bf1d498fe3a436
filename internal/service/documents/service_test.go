package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/infra/filestore"
	appointmentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/appointment"
	documentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/document"
	"github.com/m04kA/SMC-VetBookingService/internal/service/documents/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
)

type mockDocumentRepo struct {
	mock.Mock
}

func (m *mockDocumentRepo) Create(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *mockDocumentRepo) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*domain.Document, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

type stubAppointments map[uuid.UUID]*domain.Appointment

func (s stubAppointments) GetByID(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	a, ok := s[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return a, nil
}

type fixture struct {
	docs        *mockDocumentRepo
	store       *filestore.LocalStore
	svc         *Service
	owner       domain.Principal
	appointment *domain.Appointment
}

func newFixture(t *testing.T, maxBytes int64) *fixture {
	t.Helper()
	store, err := filestore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	owner := domain.Principal{UserID: uuid.New(), Roles: domain.NewRoleSet(domain.RoleOwner)}
	appt := &domain.Appointment{ID: uuid.New(), CreatedBy: owner.UserID, VetID: uuid.New()}

	f := &fixture{
		docs:        &mockDocumentRepo{},
		store:       store,
		owner:       owner,
		appointment: appt,
	}
	f.svc = NewService(f.docs, stubAppointments{appt.ID: appt}, store, maxBytes, logger.NewDiscard())
	return f
}

func TestUpload_StoresFileAndMetadata(t *testing.T) {
	f := newFixture(t, 1024)
	content := "%PDF-1.4\n%fake report\n"

	var stored *domain.Document
	f.docs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Document) }).
		Return(&domain.Document{}, nil).Once()

	_, err := f.svc.Upload(context.Background(), f.owner, &models.UploadRequest{
		AppointmentID: f.appointment.ID,
		FileName:      `C:\scans\report.pdf`,
		Content:       strings.NewReader(content),
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "report.pdf", stored.FileName)
	assert.Equal(t, "application/pdf", stored.ContentType)
	assert.Equal(t, int64(len(content)), stored.SizeBytes)
	assert.Equal(t, f.appointment.ID.String()+"/"+stored.ID.String(), stored.StorageKey)

	rc, err := f.store.Open(stored.StorageKey)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestUpload_Rejections(t *testing.T) {
	t.Run("unsupported type", func(t *testing.T) {
		f := newFixture(t, 1024)
		_, err := f.svc.Upload(context.Background(), f.owner, &models.UploadRequest{
			AppointmentID: f.appointment.ID,
			FileName:      "tool.exe",
			Content:       bytes.NewReader([]byte{'M', 'Z', 0x90, 0x00, 0x03, 0x00, 0x00, 0x00, 0x04}),
		})
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("too large", func(t *testing.T) {
		f := newFixture(t, 16)
		_, err := f.svc.Upload(context.Background(), f.owner, &models.UploadRequest{
			AppointmentID: f.appointment.ID,
			FileName:      "notes.txt",
			Content:       strings.NewReader(strings.Repeat("a", 64)),
		})
		assert.ErrorIs(t, err, ErrFileTooLarge)
		f.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("stranger", func(t *testing.T) {
		f := newFixture(t, 1024)
		stranger := domain.Principal{UserID: uuid.New(), Roles: domain.NewRoleSet(domain.RoleOwner)}
		_, err := f.svc.Upload(context.Background(), stranger, &models.UploadRequest{
			AppointmentID: f.appointment.ID,
			FileName:      "notes.txt",
			Content:       strings.NewReader("hello"),
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("empty file", func(t *testing.T) {
		f := newFixture(t, 1024)
		_, err := f.svc.Upload(context.Background(), f.owner, &models.UploadRequest{
			AppointmentID: f.appointment.ID,
			FileName:      "notes.txt",
			Content:       strings.NewReader(""),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUpload_RemovesFileWhenMetadataFails(t *testing.T) {
	f := newFixture(t, 1024)

	var key string
	f.docs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).
		Run(func(args mock.Arguments) { key = args.Get(1).(*domain.Document).StorageKey }).
		Return(nil, errors.New("connection reset")).Once()

	_, err := f.svc.Upload(context.Background(), f.owner, &models.UploadRequest{
		AppointmentID: f.appointment.ID,
		FileName:      "notes.txt",
		Content:       strings.NewReader("plain text"),
	})
	assert.ErrorIs(t, err, ErrInternal)

	_, err = f.store.Open(key)
	assert.ErrorIs(t, err, filestore.ErrFileNotFound)
}

func TestOpen(t *testing.T) {
	f := newFixture(t, 1024)
	doc := &domain.Document{
		ID:            uuid.New(),
		AppointmentID: f.appointment.ID,
		FileName:      "notes.txt",
		ContentType:   "text/plain",
		StorageKey:    f.appointment.ID.String() + "/file",
	}
	_, err := f.store.Save(doc.StorageKey, strings.NewReader("hello"), 1024)
	require.NoError(t, err)

	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

	t.Run("vet of the appointment", func(t *testing.T) {
		vet := domain.Principal{UserID: f.appointment.VetID, Roles: domain.NewRoleSet(domain.RoleVet)}
		meta, rc, err := f.svc.Open(context.Background(), vet, doc.ID)
		require.NoError(t, err)
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, "notes.txt", meta.FileName)
	})

	t.Run("other vet", func(t *testing.T) {
		other := domain.Principal{UserID: uuid.New(), Roles: domain.NewRoleSet(domain.RoleVet)}
		_, _, err := f.svc.Open(context.Background(), other, doc.ID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown document", func(t *testing.T) {
		missing := uuid.New()
		f.docs.On("GetByID", mock.Anything, missing).Return(nil, documentRepo.ErrDocumentNotFound).Once()
		_, _, err := f.svc.Open(context.Background(), f.owner, missing)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}

func TestListByAppointment_UnknownAppointment(t *testing.T) {
	f := newFixture(t, 1024)
	_, err := f.svc.ListByAppointment(context.Background(), f.owner, uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestListByAppointment(t *testing.T) {
	f := newFixture(t, 1024)
	f.docs.On("ListByAppointment", mock.Anything, f.appointment.ID).
		Return([]*domain.Document{{ID: uuid.New(), AppointmentID: f.appointment.ID, FileName: "a.pdf"}}, nil).Once()

	resp, err := f.svc.ListByAppointment(context.Background(), f.owner, f.appointment.ID)
	require.NoError(t, err)
	assert.Len(t, resp.Documents, 1)
}

func TestCleanFileName(t *testing.T) {
	assert.Equal(t, "passwd", cleanFileName("../../etc/passwd"))
	assert.Equal(t, "scan.png", cleanFileName(`C:\Users\me\scan.png`))
	assert.Equal(t, "", cleanFileName("   "))
	assert.Equal(t, "ab.txt", cleanFileName("a\"b.txt"))
}
