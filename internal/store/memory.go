package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jurisai/jurisai-api/internal/domain"
)

// MemoryTaskStore is the default TaskStore: a process-scoped map guarded
// by a mutex. It is an explicitly owned component, not ambient state; its
// lifecycle is tied to the application that constructed it.
//
// All reads return deep copies, so a snapshot handed to a caller never
// changes underneath it even while the executor keeps transitioning the
// stored record.
type MemoryTaskStore struct {
	mu     sync.RWMutex
	tasks  map[uuid.UUID]*domain.Task
	logger *slog.Logger
}

// NewMemoryTaskStore creates an empty in-memory task store.
func NewMemoryTaskStore(logger *slog.Logger) *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks:  make(map[uuid.UUID]*domain.Task),
		logger: logger.With("component", "memory_task_store"),
	}
}

// Create inserts a new task. The write happens under the lock, so the
// record is fully visible to GetByID the moment Create returns.
func (s *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return fmt.Errorf("%w: task cannot be nil", ErrInvalidEntity)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, task.ID)
	}
	s.tasks[task.ID] = task.Clone()

	s.logger.Debug("task created", "task_id", task.ID, "kind", task.Kind)
	return nil
}

// GetByID returns a snapshot of the task with the given ID.
func (s *MemoryTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, ErrTaskNotFound
	}
	return task.Clone(), nil
}

// Transition applies a status change under the lock, serializing all
// transitions for a given ID. Illegal transitions are logged at ERROR
// level before returning ErrConflict: they mean the executor is broken,
// and must not pass silently.
func (s *MemoryTaskStore) Transition(ctx context.Context, id uuid.UUID,
	status domain.TaskStatus, result *domain.Result, taskErr *domain.TaskError) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, ErrTaskNotFound
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
		// ValidateTransition already passed, so this cannot happen.
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}

	s.logger.Debug("task transitioned", "task_id", id, "status", status)
	return task.Clone(), nil
}

// List returns snapshots of all tasks, newest first.
func (s *MemoryTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task.Clone())
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Len returns the current number of stored tasks.
func (s *MemoryTaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// EvictExpired removes terminal tasks whose completion time is older than
// ttl. Non-terminal tasks are never evicted.
func (s *MemoryTaskStore) EvictExpired(ctx context.Context, ttl time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, task := range s.tasks {
		if task.Status.Terminal() && task.CompletedAt != nil && task.CompletedAt.Before(cutoff) {
			delete(s.tasks, id)
			evicted++
		}
	}

	if evicted > 0 {
		s.logger.Info("evicted expired tasks", "count", evicted, "ttl", ttl)
	}
	return evicted, nil
}
