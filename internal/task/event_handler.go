package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/events"
)

// Factory builds a runnable task for a task record.
type Factory interface {
	CreateTask(taskID uuid.UUID, kind domain.TaskKind) (Task, error)
}

// Submitter enqueues tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// DispatchHandler turns task dispatch events into queued work. It is the
// execution side's subscription to the submission gateway.
type DispatchHandler struct {
	factory Factory
	runner  Submitter
	logger  *slog.Logger
}

// NewDispatchHandler creates an event handler over the given factory and runner.
func NewDispatchHandler(factory Factory, runner Submitter, logger *slog.Logger) *DispatchHandler {
	return &DispatchHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "dispatch_handler"),
	}
}

// HandleEvent builds the task for the dispatched record and submits it
// to the runner.
func (h *DispatchHandler) HandleEvent(ctx context.Context, event *events.TaskDispatchEvent) error {
	task, err := h.factory.CreateTask(event.TaskID, event.Kind)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"task_id", event.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", event.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Debug("task dispatched", "task_id", event.TaskID, "kind", event.Kind)
	return nil
}
