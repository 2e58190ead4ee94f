package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskKind identifies the category of work a task carries.
type TaskKind string

// Supported task kinds.
const (
	TaskKindLegalQuery       TaskKind = "legal_query"
	TaskKindDocumentAnalysis TaskKind = "document_analysis"
	TaskKindClientIntake     TaskKind = "client_intake"
)

// Valid returns true if the kind is one of the supported task kinds.
func (k TaskKind) Valid() bool {
	switch k {
	case TaskKindLegalQuery, TaskKindDocumentAnalysis, TaskKindClientIntake:
		return true
	default:
		return false
	}
}

// TaskStatus represents the processing state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Valid returns true if the status is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true for completed and failed, the two states a task
// never leaves.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransitionTo reports whether moving from s to next is legal.
// Ordering is monotonic: pending -> processing -> {completed|failed}.
// An executor may also move straight from pending to a terminal state
// for trivial or instantly-failing work.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case TaskStatusPending:
		return next == TaskStatusProcessing || next.Terminal()
	case TaskStatusProcessing:
		return next.Terminal()
	default:
		return false
	}
}

// TaskErrorKind classifies why an execution failed.
type TaskErrorKind string

// Possible execution failure kinds.
const (
	TaskErrorKindExecution TaskErrorKind = "execution"
	TaskErrorKindTimeout   TaskErrorKind = "timeout"
	TaskErrorKindCanceled  TaskErrorKind = "canceled"
	TaskErrorKindDispatch  TaskErrorKind = "dispatch"
)

// TaskError is the terminal error payload recorded when execution fails.
type TaskError struct {
	Kind    TaskErrorKind `json:"kind"`
	Message string        `json:"message"`
}

// Result is the opaque output recorded when execution succeeds, plus
// metadata about how it was produced.
type Result struct {
	// Output is the advisor's full text answer.
	Output string `json:"output"`

	// Agent names the advisor persona that produced the output.
	Agent string `json:"agent,omitempty"`

	// DurationMS is the wall-clock execution time in milliseconds.
	DurationMS int64 `json:"duration_ms,omitempty"`

	// Details echoes kind-specific submission fields back to the caller.
	Details map[string]string `json:"details,omitempty"`
}

// Task is the persisted unit of work state, keyed by ID. The ID, kind,
// payload and creation time are fixed at creation; only status, result,
// error and completion time change afterwards, and only through a store
// transition.
type Task struct {
	ID          uuid.UUID       `json:"id"`
	Kind        TaskKind        `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	Status      TaskStatus      `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      *Result         `json:"result,omitempty"`
	Error       *TaskError      `json:"error,omitempty"`
}

// NewTask creates a pending Task from a validated payload.
// It generates a fresh UUID, serializes the payload and stamps the
// creation time. Returns a ValidationError if the payload is invalid.
func NewTask(payload Payload) (*Task, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: payload cannot be nil", ErrValidation)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	return &Task{
		ID:        uuid.New(),
		Kind:      payload.Kind(),
		Payload:   raw,
		Status:    TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Validate checks structural invariants of the task record.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: task ID cannot be empty", ErrInvalidID)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskKind, t.Kind)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, t.Status)
	}
	if t.Result != nil && t.Error != nil {
		return fmt.Errorf("%w: result and error are mutually exclusive", ErrInvalidTaskStatus)
	}
	return nil
}

// ValidateTransition checks that moving this task to next with the given
// outcome is legal: the ordering must be monotonic, a completed task must
// carry exactly a result, a failed task exactly an error, and a
// non-terminal target neither.
func (t *Task) ValidateTransition(next TaskStatus, result *Result, taskErr *TaskError) error {
	if !next.Valid() || next == TaskStatusPending {
		return fmt.Errorf("%w: %q is not a transition target", ErrInvalidTaskStatus, next)
	}
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, t.Status, next)
	}

	switch next {
	case TaskStatusCompleted:
		if result == nil || taskErr != nil {
			return fmt.Errorf("%w: completed requires a result and no error", ErrIllegalTransition)
		}
	case TaskStatusFailed:
		if taskErr == nil || result != nil {
			return fmt.Errorf("%w: failed requires an error and no result", ErrIllegalTransition)
		}
	default:
		if result != nil || taskErr != nil {
			return fmt.Errorf("%w: %s carries no outcome", ErrIllegalTransition, next)
		}
	}
	return nil
}

// ApplyTransition mutates the task after ValidateTransition has passed.
// Terminal transitions set the outcome and completion time together.
func (t *Task) ApplyTransition(next TaskStatus, result *Result, taskErr *TaskError, now time.Time) error {
	if err := t.ValidateTransition(next, result, taskErr); err != nil {
		return err
	}

	t.Status = next
	if next.Terminal() {
		completed := now.UTC()
		t.CompletedAt = &completed
		t.Result = result
		t.Error = taskErr
	}
	return nil
}

// Clone returns a deep copy of the task, so callers can hand out
// snapshots without exposing store-owned state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}

	clone := *t
	if t.Payload != nil {
		clone.Payload = append(json.RawMessage(nil), t.Payload...)
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		clone.CompletedAt = &completed
	}
	if t.Result != nil {
		result := *t.Result
		if t.Result.Details != nil {
			result.Details = make(map[string]string, len(t.Result.Details))
			for k, v := range t.Result.Details {
				result.Details[k] = v
			}
		}
		clone.Result = &result
	}
	if t.Error != nil {
		taskErr := *t.Error
		clone.Error = &taskErr
	}
	return &clone
}
