package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Errors returned by Runner.Submit.
var (
	ErrQueueFull     = errors.New("task queue is full")
	ErrRunnerStopped = errors.New("task runner is stopped")
)

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue.
	QueueSize int

	// SlowTaskWarnAfter is how long a task may run before a warning is
	// logged. Zero disables the warning.
	SlowTaskWarnAfter time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:       2,
		QueueSize:         100,
		SlowTaskWarnAfter: 2 * time.Minute,
	}
}

// Runner manages background task processing with a fixed worker pool
// over a buffered channel queue. Submission never blocks on execution:
// Submit enqueues and returns, and a full queue is an error rather than
// a wait.
type Runner struct {
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// NewRunner creates a new Runner.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 2
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "task_runner"),
	}
}

// Submit adds a task to the queue. It returns immediately: ErrQueueFull
// when the buffer is exhausted, ErrRunnerStopped after Stop.
func (r *Runner) Submit(ctx context.Context, task Task) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrRunnerStopped
	}

	select {
	case r.taskChan <- task:
		r.mu.Unlock()
		r.logger.Debug("task enqueued",
			"task_id", task.ID(),
			"kind", task.Kind(),
			"queue_len", len(r.taskChan),
			"queue_cap", cap(r.taskChan))
		return nil
	default:
		r.mu.Unlock()
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(r.taskChan))
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.logger.Info("task runner started",
		"worker_count", r.config.WorkerCount,
		"queue_size", r.config.QueueSize)
}

// Stop shuts the runner down: no further submissions are accepted, the
// queue is drained by the workers, and Stop returns once they exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.taskChan)
	r.mu.Unlock()

	r.wg.Wait()
	r.cancelFunc()
	r.logger.Info("task runner stopped")
}

// worker processes tasks from the queue until it is closed.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)
	for task := range r.taskChan {
		r.processTask(task, id)
	}
	r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

// processTask handles execution of a single task.
func (r *Runner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"kind", task.Kind(),
		"worker_id", workerID,
	)

	var slowWarn *time.Timer
	if r.config.SlowTaskWarnAfter > 0 {
		warnAfter := r.config.SlowTaskWarnAfter
		slowWarn = time.AfterFunc(warnAfter, func() {
			logger.Warn("task still running", "running_for", warnAfter)
		})
	}

	logger.Info("processing task")
	err := task.Execute(r.ctx)
	if slowWarn != nil {
		slowWarn.Stop()
	}

	if err != nil {
		// The task has already recorded its failure; this is for operators.
		logger.Error("task execution failed", "error", err)
		return
	}
	logger.Info("task execution finished")
}
