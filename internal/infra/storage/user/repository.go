package user

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

// uniqueViolation код ошибки PostgreSQL при нарушении уникального индекса
const uniqueViolation = "23505"

var userColumns = []string{
	"id",
	"email",
	"password_hash",
	"first_name",
	"last_name",
	"phone",
	"primary_role",
	"roles",
	"created_at",
	"updated_at",
}

// Repository репозиторий пользователей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пользователей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает пользователя. Email приводится к нижнему регистру
func (r *Repository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	query, args, err := psqlbuilder.Insert("users").
		Columns("id", "email", "password_hash", "first_name", "last_name", "phone", "primary_role", "roles").
		Values(u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, string(u.PrimaryRole), pq.Array(u.Roles.Strings())).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return u, nil
}

// GetByID получает пользователя по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByEmail получает пользователя по email (без учёта регистра)
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "GetByEmail", squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// UpdateProfile обновляет имя и телефон
func (r *Repository) UpdateProfile(ctx context.Context, u *domain.User) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("users").
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("phone", u.Phone).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": u.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateProfile - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateProfile - execute update: %v", ErrExecQuery, err)
	}

	return u, nil
}

// UpdatePasswordHash заменяет хеш пароля
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.exec(ctx, "UpdatePasswordHash", psqlbuilder.Update("users").
		Set("password_hash", hash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// UpdateRoles сохраняет набор ролей и основную роль
func (r *Repository) UpdateRoles(ctx context.Context, id uuid.UUID, primary domain.Role, roles domain.RoleSet) error {
	return r.exec(ctx, "UpdateRoles", psqlbuilder.Update("users").
		Set("primary_role", string(primary)).
		Set("roles", pq.Array(roles.Strings())).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

func (r *Repository) exec(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(userColumns...).
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	u, err := scanUser(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan user: %v", ErrScanRow, op, err)
	}

	return u, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u           domain.User
		primaryRole string
		roles       []string
	)

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&primaryRole,
		pq.Array(&roles),
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.PrimaryRole = domain.Role(primaryRole)
	set, err := domain.RoleSetFromStrings(roles)
	if err != nil {
		return nil, err
	}
	u.Roles = set.Add(u.PrimaryRole)

	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
