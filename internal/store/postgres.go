package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jurisai/jurisai-api/internal/domain"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations (duplicate primary key).
const pgUniqueViolation = "23505"

// PostgresTaskStore is the durable TaskStore, backed by PostgreSQL via
// the pgx stdlib driver. Per-ID serialization of transitions is done
// with a row lock inside a transaction, so the same ordering guarantees
// hold as for the in-memory store.
type PostgresTaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over the given database handle.
// The caller owns the handle and is responsible for running migrations
// before first use.
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With("component", "postgres_task_store"),
	}
}

const taskColumns = "id, kind, payload, status, result, error, created_at, completed_at"

// Create inserts a new task row.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return fmt.Errorf("%w: task cannot be nil", ErrInvalidEntity)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, kind, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		task.ID, string(task.Kind), []byte(task.Payload), string(task.Status), task.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateID, task.ID)
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}

	s.logger.Debug("task created", "task_id", task.ID, "kind", task.Kind)
	return nil
}

// GetByID returns the task with the given ID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return scanTask(s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
}

// Transition applies a status change inside a transaction, taking a row
// lock so transitions for the same ID are serialized across processes.
func (s *PostgresTaskStore) Transition(ctx context.Context, id uuid.UUID,
	status domain.TaskStatus, result *domain.Result, taskErr *domain.TaskError) (*domain.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("failed to roll back transition", "task_id", id, "error", rbErr)
		}
	}()

	task, err := scanTask(tx.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, err
	}

	if err := task.ValidateTransition(status, result, taskErr); err != nil {
		s.logger.Error("illegal task transition rejected",
			"task_id", id,
			"current_status", task.Status,
			"requested_status", status,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if err := task.ApplyTransition(status, result, taskErr, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}

	resultJSON, errJSON, err := marshalOutcome(task.Result, task.Error)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks
		SET status = $2, result = $3, error = $4, completed_at = $5
		WHERE id = $1`,
		id, string(task.Status), resultJSON, errJSON, task.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	s.logger.Debug("task transitioned", "task_id", id, "status", status)
	return task, nil
}

// List returns all tasks, newest first.
func (s *PostgresTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", "error", closeErr)
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// EvictExpired deletes terminal tasks whose completion time is older than ttl.
func (s *PostgresTaskStore) EvictExpired(ctx context.Context, ttl time.Duration, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tasks
		WHERE status IN ('completed', 'failed') AND completed_at < $1`,
		now.Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to evict expired tasks: %w", err)
	}

	evicted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count evicted tasks: %w", err)
	}
	if evicted > 0 {
		s.logger.Info("evicted expired tasks", "count", evicted, "ttl", ttl)
	}
	return int(evicted), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		kind        string
		status      string
		payload     []byte
		resultJSON  []byte
		errJSON     []byte
		completedAt sql.NullTime
	)

	err := row.Scan(&task.ID, &kind, &payload, &status, &resultJSON, &errJSON,
		&task.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	task.Kind = domain.TaskKind(kind)
	task.Status = domain.TaskStatus(status)
	task.Payload = payload
	if completedAt.Valid {
		completed := completedAt.Time
		task.CompletedAt = &completed
	}
	if len(resultJSON) > 0 {
		task.Result = &domain.Result{}
		if err := json.Unmarshal(resultJSON, task.Result); err != nil {
			return nil, fmt.Errorf("failed to decode task result: %w", err)
		}
	}
	if len(errJSON) > 0 {
		task.Error = &domain.TaskError{}
		if err := json.Unmarshal(errJSON, task.Error); err != nil {
			return nil, fmt.Errorf("failed to decode task error: %w", err)
		}
	}
	return &task, nil
}

func marshalOutcome(result *domain.Result, taskErr *domain.TaskError) ([]byte, []byte, error) {
	var resultJSON, errJSON []byte
	var err error

	if result != nil {
		if resultJSON, err = json.Marshal(result); err != nil {
			return nil, nil, fmt.Errorf("failed to encode task result: %w", err)
		}
	}
	if taskErr != nil {
		if errJSON, err = json.Marshal(taskErr); err != nil {
			return nil, nil, fmt.Errorf("failed to encode task error: %w", err)
		}
	}
	return resultJSON, errJSON, nil
}
