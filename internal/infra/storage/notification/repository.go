package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VetBookingService/pkg/psqlbuilder"
)

var notificationColumns = []string{
	"id",
	"user_id",
	"channel",
	"subject",
	"body",
	"status",
	"error",
	"read_at",
	"created_at",
}

// Repository репозиторий уведомлений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория уведомлений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет уведомление
func (r *Repository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("notifications").
		Columns("id", "user_id", "channel", "subject", "body", "status", "error").
		Values(n.ID, n.UserID, string(n.Channel), n.Subject, n.Body, string(n.Status), n.Error).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&n.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return n, nil
}

// ListByUser возвращает уведомления пользователя, новые первыми
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit int) ([]*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if onlyUnread {
		builder = builder.Where(squirrel.Eq{"read_at": nil})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByUser - scan row: %v", ErrScanRow, err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByUser - rows error: %v", ErrScanRow, err)
	}

	return notifications, nil
}

// MarkRead отмечает уведомление пользователя прочитанным
// Повторная отметка не меняет read_at
func (r *Repository) MarkRead(ctx context.Context, id, userID uuid.UUID, readAt time.Time) (*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("notifications").
		Set("read_at", squirrel.Expr("COALESCE(read_at, ?)", readAt)).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING id, user_id, channel, subject, body, status, error, read_at, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: MarkRead - build update query: %v", ErrBuildQuery, err)
	}

	n, err := scanNotification(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: MarkRead - execute update: %v", ErrExecQuery, err)
	}

	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n       domain.Notification
		channel string
		status  string
	)
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&channel,
		&n.Subject,
		&n.Body,
		&status,
		&n.Error,
		&n.ReadAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Channel = domain.NotificationChannel(channel)
	n.Status = domain.NotificationStatus(status)
	return &n, nil
}
