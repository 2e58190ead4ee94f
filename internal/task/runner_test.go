package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/events"
)

// mockTask implements Task for runner tests.
type mockTask struct {
	id     uuid.UUID
	kind   domain.TaskKind
	execFn func(ctx context.Context) error
}

func newMockTask(execFn func(ctx context.Context) error) *mockTask {
	if execFn == nil {
		execFn = func(context.Context) error { return nil }
	}
	return &mockTask{
		id:     uuid.New(),
		kind:   domain.TaskKindLegalQuery,
		execFn: execFn,
	}
}

func (t *mockTask) ID() uuid.UUID             { return t.id }
func (t *mockTask) Kind() domain.TaskKind     { return t.kind }
func (t *mockTask) Execute(ctx context.Context) error { return t.execFn(ctx) }

func TestRunnerExecutesSubmittedTasks(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 2, QueueSize: 10}, testLogger())
	runner.Start()

	var mu sync.Mutex
	executed := make(map[uuid.UUID]bool)
	done := make(chan struct{}, 5)

	for i := 0; i < 5; i++ {
		task := newMockTask(nil)
		task.execFn = func(context.Context) error {
			mu.Lock()
			executed[task.id] = true
			mu.Unlock()
			done <- struct{}{}
			return nil
		}
		require.NoError(t, runner.Submit(context.Background(), task))
	}

	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for task execution")
		}
	}
	runner.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, executed, 5)
}

func TestRunnerQueueFull(t *testing.T) {
	t.Parallel()

	// Never started, so nothing drains the queue.
	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 2}, testLogger())

	require.NoError(t, runner.Submit(context.Background(), newMockTask(nil)))
	require.NoError(t, runner.Submit(context.Background(), newMockTask(nil)))
	err := runner.Submit(context.Background(), newMockTask(nil))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRunnerRejectsAfterStop(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 2}, testLogger())
	runner.Start()
	runner.Stop()

	err := runner.Submit(context.Background(), newMockTask(nil))
	assert.ErrorIs(t, err, ErrRunnerStopped)
}

func TestRunnerStopDrainsQueue(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 10}, testLogger())

	var mu sync.Mutex
	var order []int
	for i := 0; i < 4; i++ {
		i := i
		require.NoError(t, runner.Submit(context.Background(), newMockTask(func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})))
	}

	// Start after filling the queue; Stop must not return before every
	// queued task has run.
	runner.Start()
	runner.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger())
	runner.Start()
	runner.Stop()
	runner.Stop()
}

func TestRunnerSurvivesTaskError(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 10}, testLogger())
	runner.Start()

	done := make(chan struct{})
	require.NoError(t, runner.Submit(context.Background(), newMockTask(func(context.Context) error {
		return errors.New("task exploded")
	})))
	require.NoError(t, runner.Submit(context.Background(), newMockTask(func(context.Context) error {
		close(done)
		return nil
	})))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not continue past a failing task")
	}
	runner.Stop()
}

// stubFactory and stubSubmitter exercise the dispatch handler.
type stubFactory struct {
	task Task
	err  error

	lastID   uuid.UUID
	lastKind domain.TaskKind
}

func (f *stubFactory) CreateTask(taskID uuid.UUID, kind domain.TaskKind) (Task, error) {
	f.lastID = taskID
	f.lastKind = kind
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

type stubSubmitter struct {
	err       error
	submitted []Task
}

func (s *stubSubmitter) Submit(_ context.Context, task Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, task)
	return nil
}

func TestDispatchHandler(t *testing.T) {
	t.Parallel()

	event := events.NewTaskDispatchEvent(uuid.New(), domain.TaskKindDocumentAnalysis)

	t.Run("creates and submits the task", func(t *testing.T) {
		t.Parallel()

		mock := newMockTask(nil)
		factory := &stubFactory{task: mock}
		submitter := &stubSubmitter{}
		handler := NewDispatchHandler(factory, submitter, testLogger())

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Equal(t, event.TaskID, factory.lastID)
		assert.Equal(t, domain.TaskKindDocumentAnalysis, factory.lastKind)
		require.Len(t, submitter.submitted, 1)
		assert.Equal(t, mock, submitter.submitted[0])
	})

	t.Run("propagates factory errors", func(t *testing.T) {
		t.Parallel()

		factory := &stubFactory{err: errors.New("no advisor")}
		submitter := &stubSubmitter{}
		handler := NewDispatchHandler(factory, submitter, testLogger())

		assert.Error(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, submitter.submitted)
	})

	t.Run("propagates submit errors", func(t *testing.T) {
		t.Parallel()

		factory := &stubFactory{task: newMockTask(nil)}
		submitter := &stubSubmitter{err: ErrQueueFull}
		handler := NewDispatchHandler(factory, submitter, testLogger())

		assert.ErrorIs(t, handler.HandleEvent(context.Background(), event), ErrQueueFull)
	})
}
