// Package service holds the application services between the HTTP
// handlers and the store: the submission gateway and the status query
// service.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/events"
	"github.com/jurisai/jurisai-api/internal/store"
)

// Construction errors shared by the services in this package.
var (
	ErrNilStore   = errors.New("task store cannot be nil")
	ErrNilEmitter = errors.New("event emitter cannot be nil")
	ErrNilLogger  = errors.New("logger cannot be nil")
)

// SubmissionService is the submission gateway: it validates a payload,
// persists a pending task record, and hands the record off for
// background execution. Submit returns as soon as the record exists;
// callers never wait on execution.
type SubmissionService struct {
	store   store.TaskStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewSubmissionService creates a submission gateway over the given
// store and emitter.
func NewSubmissionService(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*SubmissionService, error) {
	if taskStore == nil {
		return nil, ErrNilStore
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &SubmissionService{
		store:   taskStore,
		emitter: emitter,
		logger:  logger.With("component", "submission_service"),
	}, nil
}

// Submit validates the payload, creates a pending task record, and
// emits a dispatch event for it. The returned record is a snapshot in
// the pending state; its ID is the handle callers poll with.
//
// A validation failure creates no record. A dispatch failure leaves the
// record behind marked failed, so a poll on the returned ID explains
// what happened instead of hanging on pending forever.
func (s *SubmissionService) Submit(ctx context.Context, payload domain.Payload) (*domain.Task, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is required", domain.ErrValidation)
	}
	if err := payload.Validate(); err != nil {
		s.logger.Debug("rejected invalid submission", "kind", payload.Kind(), "error", err)
		return nil, err
	}

	record, err := domain.NewTask(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build task record: %w", err)
	}

	if err := s.store.Create(ctx, record); err != nil {
		s.logger.Error("failed to create task record", "kind", record.Kind, "error", err)
		return nil, fmt.Errorf("failed to create task record: %w", err)
	}

	event := events.NewTaskDispatchEvent(record.ID, record.Kind)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to dispatch task",
			"task_id", record.ID,
			"event_id", event.ID,
			"error", err)
		s.failDispatch(ctx, record, err)
		return nil, fmt.Errorf("failed to dispatch task: %w", err)
	}

	s.logger.Info("task submitted", "task_id", record.ID, "kind", record.Kind)
	return record, nil
}

// Redispatch re-emits the dispatch event for a record that already
// exists, used on startup to resume work a previous process left in a
// non-terminal state. Unlike Submit, a failure here does not mark the
// record failed; the next startup gets another chance at it.
func (s *SubmissionService) Redispatch(ctx context.Context, event *events.TaskDispatchEvent) error {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to re-dispatch task %s: %w", event.TaskID, err)
	}
	s.logger.Info("task re-dispatched", "task_id", event.TaskID, "kind", event.Kind)
	return nil
}

// failDispatch marks a record that could not be handed to the executor.
// Best effort: the record may legitimately already be in flight when a
// later handler failed, so a conflict here is only logged.
func (s *SubmissionService) failDispatch(ctx context.Context, record *domain.Task, cause error) {
	taskErr := &domain.TaskError{
		Kind:    domain.TaskErrorKindDispatch,
		Message: fmt.Sprintf("task could not be dispatched for execution: %v", cause),
	}
	if _, err := s.store.Transition(ctx, record.ID, domain.TaskStatusFailed, nil, taskErr); err != nil {
		s.logger.Error("failed to mark undispatched task failed",
			"task_id", record.ID,
			"error", err)
	}
}
