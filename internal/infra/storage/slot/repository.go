package slot

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

var slotColumns = []string{
	"id",
	"clinic_id",
	"vet_id",
	"start_at",
	"end_at",
	"is_available",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов расписания клиник
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет слот сетки расписания
func (r *Repository) Create(ctx context.Context, s *domain.TimeSlot) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("time_slots").
		Columns("id", "clinic_id", "vet_id", "start_at", "end_at", "is_available").
		Values(s.ID, s.ClinicID, s.VetID, s.StartAt, s.EndAt, s.IsAvailable).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return s, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("time_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return s, nil
}

// List возвращает слоты клиники, пересекающие [From, To), по возрастанию начала
// При указанном враче возвращаются его слоты и общие слоты клиники (vet_id IS NULL)
func (r *Repository) List(ctx context.Context, filter domain.TimeSlotFilter) ([]*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(slotColumns...).
		From("time_slots").
		Where(squirrel.Eq{"clinic_id": filter.ClinicID}).
		Where(squirrel.Lt{"start_at": filter.To}).
		Where(squirrel.Gt{"end_at": filter.From}).
		OrderBy("start_at ASC")

	if filter.VetID != nil {
		builder = builder.Where(squirrel.Or{
			squirrel.Eq{"vet_id": *filter.VetID},
			squirrel.Eq{"vet_id": nil},
		})
	}
	if filter.OnlyAvailable {
		builder = builder.Where(squirrel.Eq{"is_available": true})
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

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	err := row.Scan(
		&s.ID,
		&s.ClinicID,
		&s.VetID,
		&s.StartAt,
		&s.EndAt,
		&s.IsAvailable,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
