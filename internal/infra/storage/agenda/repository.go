package agenda

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

var blockColumns = []string{
	"id",
	"clinic_id",
	"vet_id",
	"start_at",
	"end_at",
	"reason",
	"created_at",
}

// Repository репозиторий блоков недоступности врачей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блоков
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет блок
func (r *Repository) Create(ctx context.Context, b *domain.AgendaBlock) (*domain.AgendaBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("agenda_blocks").
		Columns("id", "clinic_id", "vet_id", "start_at", "end_at", "reason").
		Values(b.ID, b.ClinicID, b.VetID, b.StartAt, b.EndAt, b.Reason).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&b.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return b, nil
}

// GetByID получает блок по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AgendaBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("agenda_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBlock(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan block: %v", ErrScanRow, err)
	}

	return b, nil
}

// List возвращает блоки, пересекающие [From, To)
func (r *Repository) List(ctx context.Context, filter domain.AgendaBlockFilter) ([]*domain.AgendaBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(blockColumns...).
		From("agenda_blocks").
		Where(squirrel.Lt{"start_at": filter.To}).
		Where(squirrel.Gt{"end_at": filter.From}).
		OrderBy("start_at ASC")

	if filter.ClinicID != nil {
		builder = builder.Where(squirrel.Eq{"clinic_id": *filter.ClinicID})
	}
	if filter.VetID != nil {
		builder = builder.Where(squirrel.Eq{"vet_id": *filter.VetID})
	}
	if len(filter.VetIDs) > 0 {
		builder = builder.Where(squirrel.Eq{"vet_id": filter.VetIDs})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]*domain.AgendaBlock, 0)
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// Delete удаляет блок
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("agenda_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlock(row rowScanner) (*domain.AgendaBlock, error) {
	var b domain.AgendaBlock
	err := row.Scan(
		&b.ID,
		&b.ClinicID,
		&b.VetID,
		&b.StartAt,
		&b.EndAt,
		&b.Reason,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
