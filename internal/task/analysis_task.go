package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jurisai/jurisai-api/internal/advice"
	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/store"
)

// Common construction errors.
var (
	ErrNilStore    = errors.New("task store cannot be nil")
	ErrNilAdvisor  = errors.New("advisor cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
	ErrEmptyTaskID = errors.New("task ID cannot be empty")
)

// AnalysisTask executes a single task record: it decodes the payload,
// asks the advisor for an opinion, and records the terminal outcome
// through the store. The task shares its ID with the record it executes.
type AnalysisTask struct {
	taskID  uuid.UUID
	kind    domain.TaskKind
	store   store.TaskStore
	advisor advice.Advisor
	timeout time.Duration
	logger  *slog.Logger
}

// NewAnalysisTask creates an analysis task for the given record.
func NewAnalysisTask(
	taskID uuid.UUID,
	kind domain.TaskKind,
	taskStore store.TaskStore,
	advisor advice.Advisor,
	timeout time.Duration,
	logger *slog.Logger,
) (*AnalysisTask, error) {
	if taskStore == nil {
		return nil, ErrNilStore
	}
	if advisor == nil {
		return nil, ErrNilAdvisor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTaskKind, kind)
	}

	return &AnalysisTask{
		taskID:  taskID,
		kind:    kind,
		store:   taskStore,
		advisor: advisor,
		timeout: timeout,
		logger:  logger.With("task_id", taskID, "kind", kind),
	}, nil
}

// ID returns the identifier of the task record being executed.
func (t *AnalysisTask) ID() uuid.UUID {
	return t.taskID
}

// Kind returns the task kind.
func (t *AnalysisTask) Kind() domain.TaskKind {
	return t.kind
}

// Execute drives the record through its lifecycle. Any failure becomes a
// terminal failed record; the returned error only informs the runner's
// logs.
func (t *AnalysisTask) Execute(ctx context.Context) error {
	record, err := t.store.GetByID(ctx, t.taskID)
	if err != nil {
		t.logger.Error("failed to load task record", "error", err)
		return fmt.Errorf("failed to load task record: %w", err)
	}

	switch record.Status {
	case domain.TaskStatusPending:
		if _, err := t.store.Transition(ctx, t.taskID, domain.TaskStatusProcessing, nil, nil); err != nil {
			t.logger.Error("failed to mark task processing", "error", err)
			return fmt.Errorf("failed to mark task processing: %w", err)
		}
	case domain.TaskStatusProcessing:
		// Recovered after an interrupted run; the record is already marked.
		t.logger.Info("resuming task already marked processing")
	default:
		t.logger.Warn("skipping task in terminal state", "status", record.Status)
		return nil
	}

	payload, err := domain.DecodePayload(record.Kind, record.Payload)
	if err != nil {
		return t.fail(ctx, domain.TaskErrorKindExecution, fmt.Sprintf("invalid payload: %v", err))
	}
	req, err := advice.BuildRequest(payload)
	if err != nil {
		return t.fail(ctx, domain.TaskErrorKindExecution, fmt.Sprintf("cannot build advice request: %v", err))
	}

	execCtx := ctx
	cancel := context.CancelFunc(func() {})
	if t.timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, t.timeout)
	}
	defer cancel()

	start := time.Now()
	opinion, err := t.advisor.Advise(execCtx, req)
	if err != nil {
		kind, message := classifyExecutionError(execCtx, err)
		return t.fail(ctx, kind, message)
	}

	result := &domain.Result{
		Output:     opinion.Output,
		Agent:      opinion.Agent,
		DurationMS: time.Since(start).Milliseconds(),
		Details:    resultDetails(payload, req),
	}
	if _, err := t.store.Transition(ctx, t.taskID, domain.TaskStatusCompleted, result, nil); err != nil {
		t.logger.Error("failed to record task completion", "error", err)
		return fmt.Errorf("failed to record task completion: %w", err)
	}

	t.logger.Info("task completed", "duration_ms", result.DurationMS, "agent", result.Agent)
	return nil
}

// fail records a terminal failed status. The outcome is written even if
// the surrounding context has been canceled, so a shutdown never leaves
// the record dangling in processing.
func (t *AnalysisTask) fail(ctx context.Context, kind domain.TaskErrorKind, message string) error {
	taskErr := &domain.TaskError{Kind: kind, Message: message}

	recordCtx := context.WithoutCancel(ctx)
	if _, err := t.store.Transition(recordCtx, t.taskID, domain.TaskStatusFailed, nil, taskErr); err != nil {
		t.logger.Error("failed to record task failure",
			"failure_kind", kind,
			"failure_message", message,
			"error", err)
		return fmt.Errorf("failed to record task failure: %w", err)
	}

	t.logger.Error("task failed", "failure_kind", kind, "failure_message", message)
	return fmt.Errorf("task execution failed (%s): %s", kind, message)
}

// classifyExecutionError maps an advisor failure onto a task error kind.
func classifyExecutionError(execCtx context.Context, err error) (domain.TaskErrorKind, string) {
	switch {
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		return domain.TaskErrorKindTimeout, "advisor did not answer before the execution deadline"
	case errors.Is(execCtx.Err(), context.Canceled):
		return domain.TaskErrorKindCanceled, "execution canceled before the advisor answered"
	default:
		return domain.TaskErrorKindExecution, err.Error()
	}
}

// resultDetails echoes the kind-specific submission fields alongside the
// output, mirroring what callers submitted.
func resultDetails(payload domain.Payload, req advice.Request) map[string]string {
	switch p := payload.(type) {
	case *domain.LegalQueryPayload:
		return map[string]string{
			"query":       p.Query,
			"client_type": req.ClientType,
		}
	case *domain.DocumentAnalysisPayload:
		details := map[string]string{
			"analysis_focus": req.Focus,
			"client_type":    req.ClientType,
		}
		if p.Filename != "" {
			details["filename"] = p.Filename
		}
		return details
	case *domain.ClientIntakePayload:
		return map[string]string{
			"client_name": p.ClientName,
			"case_type":   p.CaseType,
		}
	default:
		return nil
	}
}
