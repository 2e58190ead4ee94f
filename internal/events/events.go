// Package events decouples the submission gateway from the execution
// backend. The gateway emits a TaskDispatchEvent after creating a record;
// a handler on the execution side turns it into a runnable task. Neither
// side imports the other.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jurisai/jurisai-api/internal/domain"
)

// TaskDispatchEvent requests execution of a freshly created task record.
// It carries only the record's identity; the executor loads the payload
// from the store.
type TaskDispatchEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// TaskID is the identifier of the task record to execute.
	TaskID uuid.UUID `json:"task_id"`

	// Kind is the task kind of the record.
	Kind domain.TaskKind `json:"kind"`

	// CreatedAt is when the event was emitted.
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskDispatchEvent creates a dispatch event for the given task record.
func NewTaskDispatchEvent(taskID uuid.UUID, kind domain.TaskKind) *TaskDispatchEvent {
	return &TaskDispatchEvent{
		ID:        uuid.New(),
		TaskID:    taskID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler is implemented by components that react to dispatch events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskDispatchEvent) error
}

// EventEmitter is implemented by components that publish dispatch events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if any handler fails.
	EmitEvent(ctx context.Context, event *TaskDispatchEvent) error
}
