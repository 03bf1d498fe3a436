package reminder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VetBookingService/pkg/psqlbuilder"
)

var ruleColumns = []string{
	"id",
	"name",
	"scope",
	"offset_days",
	"send_email",
	"send_in_app",
	"is_active",
	"created_at",
}

var instanceColumns = []string{
	"id",
	"rule_id",
	"user_id",
	"appointment_id",
	"send_at",
	"status",
	"payload",
	"last_error",
	"sent_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий правил и экземпляров напоминаний
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория напоминаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateRule сохраняет правило
func (r *Repository) CreateRule(ctx context.Context, rule *domain.ReminderRule) (*domain.ReminderRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("reminder_rules").
		Columns("id", "name", "scope", "offset_days", "send_email", "send_in_app", "is_active").
		Values(rule.ID, rule.Name, string(rule.Scope), rule.OffsetDays, rule.SendEmail, rule.SendInApp, rule.IsActive).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateRule - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rule.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateRule - execute insert: %v", ErrExecQuery, err)
	}

	return rule, nil
}

// GetRule получает правило по ID
func (r *Repository) GetRule(ctx context.Context, id uuid.UUID) (*domain.ReminderRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("reminder_rules").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetRule - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRule - scan rule: %v", ErrScanRow, err)
	}

	return rule, nil
}

// ListRules возвращает все правила
func (r *Repository) ListRules(ctx context.Context) ([]*domain.ReminderRule, error) {
	return r.listRules(ctx, "ListRules", nil)
}

// ListActiveRules возвращает активные правила для сущности scope
func (r *Repository) ListActiveRules(ctx context.Context, scope domain.ReminderScope) ([]*domain.ReminderRule, error) {
	return r.listRules(ctx, "ListActiveRules", squirrel.Eq{"scope": string(scope), "is_active": true})
}

func (r *Repository) listRules(ctx context.Context, op string, where squirrel.Sqlizer) ([]*domain.ReminderRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(ruleColumns...).
		From("reminder_rules").
		OrderBy("offset_days ASC", "created_at ASC")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	rules := make([]*domain.ReminderRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return rules, nil
}

// CreateInstanceIfAbsent создает экземпляр, если для (rule_id, appointment_id, user_id) его ещё нет
// Возвращает true, если строка была вставлена
func (r *Repository) CreateInstanceIfAbsent(ctx context.Context, inst *domain.ReminderInstance) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	payload := inst.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	query, args, err := psqlbuilder.Insert("reminder_instances").
		Columns("id", "rule_id", "user_id", "appointment_id", "send_at", "status", "payload").
		Values(inst.ID, inst.RuleID, inst.UserID, inst.AppointmentID, inst.SendAt, string(inst.Status), string(payload)).
		Suffix("ON CONFLICT (rule_id, appointment_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: CreateInstanceIfAbsent - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: CreateInstanceIfAbsent - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: CreateInstanceIfAbsent - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// ListByAppointment возвращает все экземпляры напоминаний приёма
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*domain.ReminderInstance, error) {
	return r.listInstances(ctx, "ListByAppointment", psqlbuilder.Select(instanceColumns...).
		From("reminder_instances").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("send_at ASC"))
}

// FetchDue возвращает до limit запланированных напоминаний с send_at <= now
func (r *Repository) FetchDue(ctx context.Context, now time.Time, limit int) ([]*domain.ReminderInstance, error) {
	return r.listInstances(ctx, "FetchDue", psqlbuilder.Select(instanceColumns...).
		From("reminder_instances").
		Where(squirrel.Eq{"status": string(domain.ReminderScheduled)}).
		Where(squirrel.LtOrEq{"send_at": now}).
		OrderBy("send_at ASC").
		Limit(uint64(limit)))
}

func (r *Repository) listInstances(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.ReminderInstance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	instances := make([]*domain.ReminderInstance, 0)
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		instances = append(instances, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return instances, nil
}

// MarkSent переводит SCHEDULED напоминание в SENT
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.finish(ctx, "MarkSent", psqlbuilder.Update("reminder_instances").
		Set("status", string(domain.ReminderSent)).
		Set("sent_at", sentAt).
		Set("last_error", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(domain.ReminderScheduled)}))
}

// MarkFailed переводит SCHEDULED напоминание в FAILED с текстом ошибки
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.finish(ctx, "MarkFailed", psqlbuilder.Update("reminder_instances").
		Set("status", string(domain.ReminderFailed)).
		Set("last_error", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(domain.ReminderScheduled)}))
}

func (r *Repository) finish(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
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
		return ErrInstanceNotScheduled
	}

	return nil
}

// CancelScheduled отменяет все запланированные напоминания приёма
func (r *Repository) CancelScheduled(ctx context.Context, appointmentID uuid.UUID) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reminder_instances").
		Set("status", string(domain.ReminderCancelled)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"appointment_id": appointmentID, "status": string(domain.ReminderScheduled)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelScheduled - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CancelScheduled - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelScheduled - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*domain.ReminderRule, error) {
	var (
		rule  domain.ReminderRule
		scope string
	)
	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&scope,
		&rule.OffsetDays,
		&rule.SendEmail,
		&rule.SendInApp,
		&rule.IsActive,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.Scope = domain.ReminderScope(scope)
	return &rule, nil
}

func scanInstance(row rowScanner) (*domain.ReminderInstance, error) {
	var (
		inst    domain.ReminderInstance
		status  string
		payload []byte
	)
	err := row.Scan(
		&inst.ID,
		&inst.RuleID,
		&inst.UserID,
		&inst.AppointmentID,
		&inst.SendAt,
		&status,
		&payload,
		&inst.LastError,
		&inst.SentAt,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inst.Status = domain.ReminderStatus(status)
	inst.Payload = json.RawMessage(payload)
	return &inst, nil
}
