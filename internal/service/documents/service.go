package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/infra/filestore"
	appointmentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/appointment"
	documentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/document"
	"github.com/m04kA/SMC-VetBookingService/internal/service/documents/models"
)

const (
	sniffLen          = 512
	maxFileNameLength = 255
)

// allowedTypes типы, определяемые по содержимому файла
var allowedTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"text/plain":      {},
}

// Service сервис документов приёма
type Service struct {
	documentRepo    DocumentRepository
	appointmentRepo AppointmentRepository
	store           FileStore
	maxBytes        int64
	logger          Logger
}

// NewService создает новый экземпляр сервиса документов
func NewService(
	documentRepo DocumentRepository,
	appointmentRepo AppointmentRepository,
	store FileStore,
	maxBytes int64,
	logger Logger,
) *Service {
	return &Service{
		documentRepo:    documentRepo,
		appointmentRepo: appointmentRepo,
		store:           store,
		maxBytes:        maxBytes,
		logger:          logger,
	}
}

// Upload сохраняет файл под ключом <appointmentID>/<documentID> и записывает метаданные.
// Тип определяется по первым байтам, заголовок клиента не учитывается.
func (s *Service) Upload(ctx context.Context, p domain.Principal, req *models.UploadRequest) (*models.DocumentResponse, error) {
	s.logger.Info("Upload: appointment=%s by user=%s file=%q", req.AppointmentID, p.UserID, req.FileName)

	fileName := cleanFileName(req.FileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if req.Content == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}

	if _, err := s.visibleAppointment(ctx, "Upload", p, req.AppointmentID); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(req.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.logger.Warn("Upload: failed to read file: %v", err)
		return nil, fmt.Errorf("%w: read file: %v", ErrInvalidInput, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	head = head[:n]

	contentType, err := detectType(head)
	if err != nil {
		s.logger.Warn("Upload: %v", err)
		return nil, err
	}

	doc := &domain.Document{
		ID:            uuid.New(),
		AppointmentID: req.AppointmentID,
		UploadedBy:    p.UserID,
		FileName:      fileName,
		ContentType:   contentType,
	}
	doc.StorageKey = req.AppointmentID.String() + "/" + doc.ID.String()

	size, err := s.store.Save(doc.StorageKey, io.MultiReader(bytes.NewReader(head), req.Content), s.maxBytes)
	if err != nil {
		if errors.Is(err, filestore.ErrFileTooLarge) {
			s.logger.Warn("Upload: file %q exceeds %d bytes", fileName, s.maxBytes)
			return nil, ErrFileTooLarge
		}
		s.logger.Error("Upload: failed to save file: %v", err)
		return nil, fmt.Errorf("%w: Upload - file store error: %v", ErrInternal, err)
	}
	doc.SizeBytes = size

	created, err := s.documentRepo.Create(ctx, doc)
	if err != nil {
		s.logger.Error("Upload: repository error: %v", err)
		if rmErr := s.store.Remove(doc.StorageKey); rmErr != nil {
			s.logger.Error("Upload: failed to remove orphan file %s: %v", doc.StorageKey, rmErr)
		}
		return nil, fmt.Errorf("%w: Upload - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upload: document=%s stored (%d bytes, %s)", created.ID, size, contentType)
	return models.FromDomainDocument(created), nil
}

// Open возвращает метаданные и поток содержимого. Поток закрывает вызывающий.
func (s *Service) Open(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.DocumentResponse, io.ReadCloser, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, documentRepo.ErrDocumentNotFound) {
			s.logger.Warn("Open: document=%s not found", id)
			return nil, nil, ErrDocumentNotFound
		}
		s.logger.Error("Open: repository error for document=%s: %v", id, err)
		return nil, nil, fmt.Errorf("%w: Open - repository error: %v", ErrInternal, err)
	}

	if _, err := s.visibleAppointment(ctx, "Open", p, doc.AppointmentID); err != nil {
		return nil, nil, err
	}

	content, err := s.store.Open(doc.StorageKey)
	if err != nil {
		if errors.Is(err, filestore.ErrFileNotFound) {
			s.logger.Error("Open: file of document=%s is missing at %s", id, doc.StorageKey)
			return nil, nil, ErrDocumentNotFound
		}
		s.logger.Error("Open: file store error for document=%s: %v", id, err)
		return nil, nil, fmt.Errorf("%w: Open - file store error: %v", ErrInternal, err)
	}

	return models.FromDomainDocument(doc), content, nil
}

// ListByAppointment возвращает документы приёма
func (s *Service) ListByAppointment(ctx context.Context, p domain.Principal, appointmentID uuid.UUID) (*models.DocumentListResponse, error) {
	if _, err := s.visibleAppointment(ctx, "ListByAppointment", p, appointmentID); err != nil {
		return nil, err
	}

	list, err := s.documentRepo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Error("ListByAppointment: repository error for appointment=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: ListByAppointment - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainDocumentList(list), nil
}

func (s *Service) visibleAppointment(ctx context.Context, op string, p domain.Principal, id uuid.UUID) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment=%s not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	if !appointment.VisibleTo(p) {
		s.logger.Warn("%s: access denied for user=%s to appointment=%s", op, p.UserID, id)
		return nil, ErrAccessDenied
	}
	return appointment, nil
}

func detectType(head []byte) (string, error) {
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(head))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if _, ok := allowedTypes[mediaType]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}
	return mediaType, nil
}

// cleanFileName оставляет только базовое имя без управляющих символов
func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if runes := []rune(name); len(runes) > maxFileNameLength {
		name = string(runes[:maxFileNameLength])
	}
	return name
}
