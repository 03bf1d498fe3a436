package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VetBookingService/pkg/psqlbuilder"
)

const uniqueViolation = "23505"

var appointmentColumns = []string{
	"id",
	"clinic_id",
	"animal_id",
	"vet_id",
	"type_id",
	"status",
	"start_at",
	"end_at",
	"created_by",
	"notes",
	"report",
	"reject_reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий приёмов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория приёмов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает приём
// Гонку двух записей на одно время врача закрывает частичный уникальный индекс
// uq_appointments_vet_start_active, нарушение которого возвращается как ErrSlotTaken
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"id",
			"clinic_id",
			"animal_id",
			"vet_id",
			"type_id",
			"status",
			"start_at",
			"end_at",
			"created_by",
			"notes",
		).
		Values(
			a.ID,
			a.ClinicID,
			a.AnimalID,
			a.VetID,
			a.TypeID,
			string(a.Status),
			a.StartAt,
			a.EndAt,
			a.CreatedBy,
			a.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return a, nil
}

// GetByID получает приём по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return a, nil
}

// List возвращает приёмы по фильтру, по возрастанию начала
// Внутри транзакции строки блокируются (FOR UPDATE) для проверки конфликтов при записи
func (r *Repository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
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
	if filter.CreatedBy != nil {
		builder = builder.Where(squirrel.Eq{"created_by": *filter.CreatedBy})
	}
	// Пересечение с [From, To)
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_at": *filter.To})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.Gt{"end_at": *filter.From})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
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

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// Transition атомарно переводит приём в change.Status, если текущий статус входит в from
// Если строка не обновилась: ErrAppointmentNotFound при отсутствии приёма, иначе ErrStatusConflict
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, from []domain.AppointmentStatus, change domain.AppointmentChange) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("appointments").
		Set("status", string(change.Status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(from)})

	if change.Notes != nil {
		builder = builder.Set("notes", *change.Notes)
	}
	if change.Report != nil {
		builder = builder.Set("report", *change.Report)
	}
	if change.RejectReason != nil {
		builder = builder.Set("reject_reason", *change.RejectReason)
	}

	query, args, err := builder.
		Suffix("RETURNING " + strings.Join(appointmentColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Transition - build update query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		// Либо приёма нет, либо его статус уже изменился
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Transition - execute update: %v", ErrExecQuery, err)
	}

	return a, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a      domain.Appointment
		status string
	)
	err := row.Scan(
		&a.ID,
		&a.ClinicID,
		&a.AnimalID,
		&a.VetID,
		&a.TypeID,
		&status,
		&a.StartAt,
		&a.EndAt,
		&a.CreatedBy,
		&a.Notes,
		&a.Report,
		&a.RejectReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.AppointmentStatus(status)
	return &a, nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
