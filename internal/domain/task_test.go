package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("creates pending task with fresh ID", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(&LegalQueryPayload{Query: "Is a verbal contract enforceable?"})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, TaskKindLegalQuery, task.Kind)
		assert.Equal(t, TaskStatusPending, task.Status)
		assert.False(t, task.CreatedAt.IsZero())
		assert.Nil(t, task.CompletedAt)
		assert.Nil(t, task.Result)
		assert.Nil(t, task.Error)
	})

	t.Run("distinct IDs for identical payloads", func(t *testing.T) {
		t.Parallel()

		first, err := NewTask(&LegalQueryPayload{Query: "same question"})
		require.NoError(t, err)
		second, err := NewTask(&LegalQueryPayload{Query: "same question"})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("rejects invalid payload without creating a task", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(&LegalQueryPayload{Query: "   "})
		assert.Nil(t, task)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects nil payload", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(nil)
		assert.Nil(t, task)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestPayloadValidate(t *testing.T) {
	t.Parallel()

	t.Run("client intake names every missing field", func(t *testing.T) {
		t.Parallel()

		err := (&ClientIntakePayload{CaseDescription: "breach of contract dispute"}).Validate()
		require.Error(t, err)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []string{"client_name", "case_type"}, vErr.FieldNames())
	})

	t.Run("document analysis requires text", func(t *testing.T) {
		t.Parallel()

		err := (&DocumentAnalysisPayload{}).Validate()
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []string{"document_text"}, vErr.FieldNames())
	})

	t.Run("valid payloads pass", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, (&LegalQueryPayload{Query: "q"}).Validate())
		assert.NoError(t, (&DocumentAnalysisPayload{DocumentText: "text"}).Validate())
		assert.NoError(t, (&ClientIntakePayload{
			ClientName:      "Jane Doe",
			CaseDescription: "landlord dispute",
			CaseType:        "housing",
		}).Validate())
	})
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	task, err := NewTask(&ClientIntakePayload{
		ClientName:      "Acme Corp",
		CaseDescription: "trademark infringement",
		CaseType:        "intellectual_property",
	})
	require.NoError(t, err)

	payload, err := DecodePayload(task.Kind, task.Payload)
	require.NoError(t, err)

	intake, ok := payload.(*ClientIntakePayload)
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", intake.ClientName)
	assert.Equal(t, "intellectual_property", intake.CaseType)

	_, err = DecodePayload(TaskKind("mystery"), task.Payload)
	assert.ErrorIs(t, err, ErrInvalidTaskKind)
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{TaskStatusPending, TaskStatusProcessing, true},
		{TaskStatusPending, TaskStatusCompleted, true},
		{TaskStatusPending, TaskStatusFailed, true},
		{TaskStatusProcessing, TaskStatusCompleted, true},
		{TaskStatusProcessing, TaskStatusFailed, true},
		{TaskStatusProcessing, TaskStatusPending, false},
		{TaskStatusCompleted, TaskStatusProcessing, false},
		{TaskStatusCompleted, TaskStatusFailed, false},
		{TaskStatusFailed, TaskStatusCompleted, false},
		{TaskStatusFailed, TaskStatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestApplyTransition(t *testing.T) {
	t.Parallel()

	newPendingTask := func(t *testing.T) *Task {
		t.Helper()
		task, err := NewTask(&LegalQueryPayload{Query: "q"})
		require.NoError(t, err)
		return task
	}

	t.Run("completed sets result and completion time together", func(t *testing.T) {
		t.Parallel()

		task := newPendingTask(t)
		require.NoError(t, task.ApplyTransition(TaskStatusProcessing, nil, nil, time.Now()))

		now := time.Now()
		result := &Result{Output: "advice", Agent: "legal_advisor"}
		require.NoError(t, task.ApplyTransition(TaskStatusCompleted, result, nil, now))

		assert.Equal(t, TaskStatusCompleted, task.Status)
		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, now.UTC(), *task.CompletedAt)
		assert.Equal(t, result, task.Result)
		assert.Nil(t, task.Error)
	})

	t.Run("failed sets error and completion time together", func(t *testing.T) {
		t.Parallel()

		task := newPendingTask(t)
		taskErr := &TaskError{Kind: TaskErrorKindTimeout, Message: "deadline exceeded"}
		require.NoError(t, task.ApplyTransition(TaskStatusFailed, nil, taskErr, time.Now()))

		assert.Equal(t, TaskStatusFailed, task.Status)
		assert.NotNil(t, task.CompletedAt)
		assert.Equal(t, taskErr, task.Error)
		assert.Nil(t, task.Result)
	})

	t.Run("completed without result is illegal", func(t *testing.T) {
		t.Parallel()

		task := newPendingTask(t)
		err := task.ApplyTransition(TaskStatusCompleted, nil, nil, time.Now())
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("failed with result is illegal", func(t *testing.T) {
		t.Parallel()

		task := newPendingTask(t)
		err := task.ApplyTransition(TaskStatusFailed, &Result{Output: "x"},
			&TaskError{Kind: TaskErrorKindExecution, Message: "boom"}, time.Now())
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("terminal states are permanent", func(t *testing.T) {
		t.Parallel()

		task := newPendingTask(t)
		require.NoError(t, task.ApplyTransition(TaskStatusFailed, nil,
			&TaskError{Kind: TaskErrorKindExecution, Message: "boom"}, time.Now()))

		err := task.ApplyTransition(TaskStatusProcessing, nil, nil, time.Now())
		assert.ErrorIs(t, err, ErrIllegalTransition)

		err = task.ApplyTransition(TaskStatusCompleted, &Result{Output: "late"}, nil, time.Now())
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("pending target is never legal", func(t *testing.T) {
		t.Parallel()

		task := newPendingTask(t)
		err := task.ApplyTransition(TaskStatusPending, nil, nil, time.Now())
		assert.ErrorIs(t, err, ErrInvalidTaskStatus)
	})
}

func TestTaskClone(t *testing.T) {
	t.Parallel()

	task, err := NewTask(&LegalQueryPayload{Query: "q"})
	require.NoError(t, err)
	require.NoError(t, task.ApplyTransition(TaskStatusCompleted, &Result{
		Output:  "advice",
		Details: map[string]string{"client_type": "citizen"},
	}, nil, time.Now()))

	clone := task.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, task.ID, clone.ID)
	assert.Equal(t, task.Result.Output, clone.Result.Output)

	// Mutating the clone must not leak back into the original.
	clone.Result.Details["client_type"] = "business"
	clone.Payload[0] = '!'
	assert.Equal(t, "citizen", task.Result.Details["client_type"])
	assert.Equal(t, byte('{'), task.Payload[0])
}

func TestValidationErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewValidationError(FieldError{Field: "query", Reason: "must not be empty"})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "query")
}
