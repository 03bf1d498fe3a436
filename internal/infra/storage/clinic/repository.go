package clinic

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

var clinicColumns = []string{
	"id",
	"name",
	"address",
	"city",
	"phone",
	"email",
	"created_at",
	"updated_at",
}

// Repository репозиторий клиник и их врачей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиник
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает клинику
func (r *Repository) Create(ctx context.Context, c *domain.Clinic) (*domain.Clinic, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("clinics").
		Columns("id", "name", "address", "city", "phone", "email").
		Values(c.ID, c.Name, c.Address, c.City, c.Phone, c.Email).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return c, nil
}

// GetByID получает клинику по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(clinicColumns...).
		From("clinics").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var c domain.Clinic
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.Name,
		&c.Address,
		&c.City,
		&c.Phone,
		&c.Email,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClinicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan clinic: %v", ErrScanRow, err)
	}

	return &c, nil
}

// List возвращает справочник клиник, отсортированный по названию
func (r *Repository) List(ctx context.Context, filter domain.ClinicFilter) ([]*domain.Clinic, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(clinicColumns...).
		From("clinics").
		OrderBy("name ASC")

	if filter.City != nil && strings.TrimSpace(*filter.City) != "" {
		builder = builder.Where(squirrel.Expr("LOWER(city) = LOWER(?)", strings.TrimSpace(*filter.City)))
	}
	if filter.Query != nil && strings.TrimSpace(*filter.Query) != "" {
		builder = builder.Where(squirrel.ILike{"name": "%" + strings.TrimSpace(*filter.Query) + "%"})
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

	clinics := make([]*domain.Clinic, 0)
	for rows.Next() {
		var c domain.Clinic
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		clinics = append(clinics, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return clinics, nil
}

// AddVet привязывает врача к клинике
func (r *Repository) AddVet(ctx context.Context, clinicID, vetID uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("clinic_vets").
		Columns("clinic_id", "vet_id").
		Values(clinicID, vetID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddVet - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrVetAlreadyAdded
		}
		return fmt.Errorf("%w: AddVet - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListVets возвращает врачей клиники
func (r *Repository) ListVets(ctx context.Context, clinicID uuid.UUID) ([]*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"u.id",
		"u.email",
		"u.first_name",
		"u.last_name",
		"u.phone",
		"u.primary_role",
		"u.roles",
	).
		From("clinic_vets cv").
		Join("users u ON u.id = cv.vet_id").
		Where(squirrel.Eq{"cv.clinic_id": clinicID}).
		OrderBy("u.last_name ASC", "u.first_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListVets - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListVets - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	vets := make([]*domain.User, 0)
	for rows.Next() {
		var (
			u           domain.User
			primaryRole string
			roles       []string
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &primaryRole, pq.Array(&roles)); err != nil {
			return nil, fmt.Errorf("%w: ListVets - scan row: %v", ErrScanRow, err)
		}
		u.PrimaryRole = domain.Role(primaryRole)
		set, err := domain.RoleSetFromStrings(roles)
		if err != nil {
			return nil, fmt.Errorf("%w: ListVets - parse roles: %v", ErrScanRow, err)
		}
		u.Roles = set
		vets = append(vets, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListVets - rows error: %v", ErrScanRow, err)
	}

	return vets, nil
}

// IsVetOfClinic проверяет, что врач работает в клинике
func (r *Repository) IsVetOfClinic(ctx context.Context, clinicID, vetID uuid.UUID) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From("clinic_vets").
		Where(squirrel.Eq{"clinic_id": clinicID, "vet_id": vetID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: IsVetOfClinic - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: IsVetOfClinic - scan: %v", ErrScanRow, err)
	}

	return exists, nil
}
