package animal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VetBookingService/pkg/psqlbuilder"
)

const foreignKeyViolation = "23503"

var animalColumns = []string{
	"id",
	"owner_id",
	"name",
	"species",
	"breed",
	"sex",
	"birth_date",
	"weight_kg",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий животных
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория животных
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create регистрирует животное
func (r *Repository) Create(ctx context.Context, a *domain.Animal) (*domain.Animal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("animals").
		Columns("id", "owner_id", "name", "species", "breed", "sex", "birth_date", "weight_kg", "notes").
		Values(a.ID, a.OwnerID, a.Name, a.Species, a.Breed, a.Sex, a.BirthDate, a.WeightKg, a.Notes).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return a, nil
}

// GetByID получает животное по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Animal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(animalColumns...).
		From("animals").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAnimal(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnimalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan animal: %v", ErrScanRow, err)
	}

	return a, nil
}

// ListByOwner возвращает животных владельца
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Animal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(animalColumns...).
		From("animals").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	animals := make([]*domain.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByOwner - scan row: %v", ErrScanRow, err)
		}
		animals = append(animals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - rows error: %v", ErrScanRow, err)
	}

	return animals, nil
}

// Update перезаписывает изменяемые поля животного
func (r *Repository) Update(ctx context.Context, a *domain.Animal) (*domain.Animal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("animals").
		Set("name", a.Name).
		Set("species", a.Species).
		Set("breed", a.Breed).
		Set("sex", a.Sex).
		Set("birth_date", a.BirthDate).
		Set("weight_kg", a.WeightKg).
		Set("notes", a.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": a.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnimalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return a, nil
}

// Delete удаляет животное
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("animals").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation {
			return ErrAnimalInUse
		}
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAnimalNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAnimal(row rowScanner) (*domain.Animal, error) {
	var a domain.Animal
	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.Species,
		&a.Breed,
		&a.Sex,
		&a.BirthDate,
		&a.WeightKg,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
