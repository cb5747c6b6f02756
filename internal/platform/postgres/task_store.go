package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.owner_id, t.assignee_id, t.created_at, t.updated_at`

// viewSelect loads tasks together with their owner and assignee in one query.
const viewSelect = `
	SELECT ` + taskColumns + `,
		o.email, o.full_name,
		a.id, a.email, a.full_name
	FROM tasks t
	JOIN users o ON o.id = t.owner_id
	LEFT JOIN users a ON a.id = t.assignee_id`

// PostgresTaskStore implements store.TaskStore using PostgreSQL.
type PostgresTaskStore struct {
	db         store.DBTX
	sqlDB      *sql.DB // nil when bound to a transaction
	maxRetries int
	logger     *slog.Logger
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a task store on db. Transactions opened through
// InTx are retried up to maxRetries times on serialization failures.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db *sql.DB, maxRetries int, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: constructor called with a nil database is a wiring bug
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:         db,
		sqlDB:      db,
		maxRetries: maxRetries,
		logger:     logger.With(slog.String("component", "task_store")),
	}
}

// WithTx returns a store bound to tx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{
		db:         tx,
		maxRetries: s.maxRetries,
		logger:     s.logger,
	}
}

// InTx implements store.TaskStore.
func (s *PostgresTaskStore) InTx(ctx context.Context, fn func(ctx context.Context, tasks store.TaskStore) error) error {
	if s.sqlDB == nil {
		return fn(ctx, s)
	}

	return WithRetry(ctx, s.maxRetries, func(ctx context.Context) error {
		return store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, s.WithTx(tx))
		})
	})
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (title, description, status, priority, owner_id, assignee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.OwnerID,
		task.AssigneeID,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.Int64("owner_id", task.OwnerID))
			return fmt.Errorf("%w: owner or assignee does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", task.OwnerID))
		return MapError(err)
	}

	log.Debug("task created", slog.Int64("task_id", task.ID))
	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return s.get(ctx, id, false)
}

// GetByIDForUpdate implements store.TaskStore. The row stays locked until the
// transaction the store is bound to ends.
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresTaskStore) get(ctx context.Context, id int64, forUpdate bool) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		if errors.Is(err, domain.ErrInvalidState) {
			log.Error("stored task violates workflow invariant",
				slog.Int64("task_id", id),
				slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to get task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return task, nil
}

// GetView implements store.TaskStore.
func (s *PostgresTaskStore) GetView(ctx context.Context, id int64) (*domain.TaskView, error) {
	view, err := scanView(s.db.QueryRowContext(ctx, viewSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task view",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return view, nil
}

// Update implements store.TaskStore. Owner and creation time are never written.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, assignee_id = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.AssigneeID,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: assignee does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to update task",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// List implements store.TaskStore. The page and the total come from two
// statements sharing one WHERE clause; owner and assignee rows are joined into
// the page query.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks t` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	page := &store.TaskPage{Total: total, Items: []*domain.TaskView{}}
	if total == 0 || filter.Offset() >= total {
		return page, nil
	}

	n := len(args)
	query := viewSelect + where +
		fmt.Sprintf(` ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, filter.PerPage, filter.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, view)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return page, nil
}

// buildTaskWhere renders the filter as a WHERE clause over alias t with
// positional arguments starting at $1.
func buildTaskWhere(filter store.TaskFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("t.status = $%d", string(*filter.Status))
	}
	if filter.Priority != nil {
		add("t.priority = $%d", string(*filter.Priority))
	}
	if filter.AssigneeID != nil {
		add("t.assignee_id = $%d", *filter.AssigneeID)
	}
	if filter.OwnerID != nil {
		add("t.owner_id = $%d", *filter.OwnerID)
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(t.title ILIKE $%d OR t.description ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type taskRow struct {
	task        domain.Task
	status      string
	priority    string
	description sql.NullString
	assigneeID  sql.NullInt64
}

func (r *taskRow) dest() []any {
	return []any{
		&r.task.ID,
		&r.task.Title,
		&r.description,
		&r.status,
		&r.priority,
		&r.task.OwnerID,
		&r.assigneeID,
		&r.task.CreatedAt,
		&r.task.UpdatedAt,
	}
}

// finish copies nullable columns into the task and rejects unknown statuses.
func (r *taskRow) finish() (*domain.Task, error) {
	status, err := domain.ParseStatus(r.status)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", r.task.ID, err)
	}
	t := r.task
	t.Status = status
	t.Priority = domain.Priority(r.priority)
	if r.description.Valid {
		d := r.description.String
		t.Description = &d
	}
	if r.assigneeID.Valid {
		a := r.assigneeID.Int64
		t.AssigneeID = &a
	}
	return &t, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var r taskRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.finish()
}

func scanView(row rowScanner) (*domain.TaskView, error) {
	var (
		r             taskRow
		ownerEmail    string
		ownerName     sql.NullString
		assigneeID    sql.NullInt64
		assigneeEmail sql.NullString
		assigneeName  sql.NullString
	)
	dest := append(r.dest(), &ownerEmail, &ownerName, &assigneeID, &assigneeEmail, &assigneeName)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	task, err := r.finish()
	if err != nil {
		return nil, err
	}

	view := &domain.TaskView{
		Task:  *task,
		Owner: domain.UserBrief{ID: task.OwnerID, Email: ownerEmail, FullName: nullString(ownerName)},
	}
	if assigneeID.Valid {
		view.Assignee = &domain.UserBrief{
			ID:       assigneeID.Int64,
			Email:    assigneeEmail.String,
			FullName: nullString(assigneeName),
		}
	}
	return view, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
