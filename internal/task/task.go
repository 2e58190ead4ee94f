// Package task contains the asynchronous execution backend: a worker
// pool runner, the analysis task that drives a single record through the
// advisor, and the event handler that turns dispatch events into queued
// work. All outcomes are reported back through the task store's
// Transition operation; nothing in this package mutates records directly.
package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/jurisai/jurisai-api/internal/domain"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the identifier of the task record being executed.
	ID() uuid.UUID

	// Kind returns the task kind.
	Kind() domain.TaskKind

	// Execute runs the task logic. Execution outcomes are recorded in
	// the task store; the returned error is for the runner's logging
	// only and never reaches a submitting caller.
	Execute(ctx context.Context) error
}
