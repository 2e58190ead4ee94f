package task

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jurisai/jurisai-api/internal/advice"
	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/store"
)

// AnalysisTaskFactory builds AnalysisTasks bound to the application's
// store and advisor.
type AnalysisTaskFactory struct {
	store   store.TaskStore
	advisor advice.Advisor
	timeout time.Duration
	logger  *slog.Logger
}

// NewAnalysisTaskFactory creates a factory for analysis tasks.
func NewAnalysisTaskFactory(
	taskStore store.TaskStore,
	advisor advice.Advisor,
	timeout time.Duration,
	logger *slog.Logger,
) (*AnalysisTaskFactory, error) {
	if taskStore == nil {
		return nil, ErrNilStore
	}
	if advisor == nil {
		return nil, ErrNilAdvisor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &AnalysisTaskFactory{
		store:   taskStore,
		advisor: advisor,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// CreateTask builds the analysis task for the given record.
func (f *AnalysisTaskFactory) CreateTask(taskID uuid.UUID, kind domain.TaskKind) (Task, error) {
	return NewAnalysisTask(taskID, kind, f.store, f.advisor, f.timeout, f.logger)
}
