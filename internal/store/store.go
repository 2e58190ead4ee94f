// Package store owns task record persistence. It is the only component
// allowed to mutate a task after creation; every status change funnels
// through Transition, which enforces the monotonic ordering of the task
// state machine.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jurisai/jurisai-api/internal/domain"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrDuplicateID is returned when a create would reuse an existing task ID.
	ErrDuplicateID = errors.New("task ID already exists")

	// ErrConflict is returned when a transition violates the monotonic
	// status ordering. This indicates a bug in the caller, not a
	// recoverable runtime condition; stores log it loudly.
	ErrConflict = errors.New("conflicting status transition")

	// ErrInvalidEntity is returned when a task fails validation before
	// being stored.
	ErrInvalidEntity = errors.New("invalid task")
)

// TaskStore defines the interface for task record persistence.
type TaskStore interface {
	// Create inserts a new pending task. The task must be visible to
	// GetByID as soon as Create returns. Returns ErrDuplicateID if the
	// ID is already taken and validation errors for malformed tasks.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns a snapshot of the task with the given ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Transition moves a task to the given status, recording the result
	// or error atomically with the status change for terminal targets.
	// Transitions for a single ID are serialized; a reader never observes
	// a half-applied transition. Returns ErrTaskNotFound for unknown IDs
	// and ErrConflict when the ordering would be violated.
	Transition(ctx context.Context, id uuid.UUID, status domain.TaskStatus,
		result *domain.Result, taskErr *domain.TaskError) (*domain.Task, error)

	// List returns snapshots of all tasks, newest first.
	List(ctx context.Context) ([]*domain.Task, error)
}

// Evictor is implemented by stores that support TTL-based retention of
// terminal records. EvictExpired removes completed and failed tasks whose
// completion time is older than ttl, returning how many were removed.
type Evictor interface {
	EvictExpired(ctx context.Context, ttl time.Duration, now time.Time) (int, error)
}

// IsNotFoundError reports whether err is any kind of not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
