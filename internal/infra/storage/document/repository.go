package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VetBookingService/pkg/psqlbuilder"
)

var documentColumns = []string{
	"id",
	"appointment_id",
	"uploaded_by",
	"file_name",
	"content_type",
	"size_bytes",
	"storage_key",
	"created_at",
}

// Repository репозиторий метаданных документов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория документов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет метаданные документа. ID должен быть задан заранее: он входит в ключ хранения
func (r *Repository) Create(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("documents").
		Columns("id", "appointment_id", "uploaded_by", "file_name", "content_type", "size_bytes", "storage_key").
		Values(d.ID, d.AppointmentID, d.UploadedBy, d.FileName, d.ContentType, d.SizeBytes, d.StorageKey).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&d.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return d, nil
}

// GetByID получает документ по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	d, err := scanDocument(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan document: %v", ErrScanRow, err)
	}

	return d, nil
}

// ListByAppointment возвращает документы приёма
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*domain.Document, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	documents := make([]*domain.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByAppointment - scan row: %v", ErrScanRow, err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - rows error: %v", ErrScanRow, err)
	}

	return documents, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID,
		&d.AppointmentID,
		&d.UploadedBy,
		&d.FileName,
		&d.ContentType,
		&d.SizeBytes,
		&d.StorageKey,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
