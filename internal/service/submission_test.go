package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/events"
	"github.com/jurisai/jurisai-api/internal/store"
)

// captureEmitter records emitted events and optionally fails.
type captureEmitter struct {
	events []*events.TaskDispatchEvent
	err    error
}

func (e *captureEmitter) EmitEvent(_ context.Context, event *events.TaskDispatchEvent) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSubmission(t *testing.T, emitter events.EventEmitter) (*SubmissionService, *store.MemoryTaskStore) {
	t.Helper()

	s := store.NewMemoryTaskStore(testLogger())
	svc, err := NewSubmissionService(s, emitter, testLogger())
	require.NoError(t, err)
	return svc, s
}

func TestSubmissionServiceSubmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates a pending record and dispatches it", func(t *testing.T) {
		t.Parallel()

		emitter := &captureEmitter{}
		svc, s := newSubmission(t, emitter)

		record, err := svc.Submit(ctx, &domain.LegalQueryPayload{
			Query:    "Can my landlord raise rent mid-lease?",
			CaseType: "family",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, record.Status)
		assert.Nil(t, record.Result)
		assert.Nil(t, record.Error)
		assert.Nil(t, record.CompletedAt)

		stored, err := s.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, stored.Status)

		require.Len(t, emitter.events, 1)
		assert.Equal(t, record.ID, emitter.events[0].TaskID)
		assert.Equal(t, domain.TaskKindLegalQuery, emitter.events[0].Kind)
	})

	t.Run("rejects an invalid payload without creating a record", func(t *testing.T) {
		t.Parallel()

		emitter := &captureEmitter{}
		svc, s := newSubmission(t, emitter)

		record, err := svc.Submit(ctx, &domain.ClientIntakePayload{CaseDescription: "dispute"})
		assert.Nil(t, record)
		assert.ErrorIs(t, err, domain.ErrValidation)

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldNames(), "client_name")
		assert.Contains(t, vErr.FieldNames(), "case_type")

		assert.Zero(t, s.Len())
		assert.Empty(t, emitter.events)
	})

	t.Run("rejects a nil payload", func(t *testing.T) {
		t.Parallel()

		svc, _ := newSubmission(t, &captureEmitter{})
		record, err := svc.Submit(ctx, nil)
		assert.Nil(t, record)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("marks the record failed when dispatch fails", func(t *testing.T) {
		t.Parallel()

		emitter := &captureEmitter{err: errors.New("queue unavailable")}
		svc, s := newSubmission(t, emitter)

		record, err := svc.Submit(ctx, &domain.LegalQueryPayload{Query: "q"})
		assert.Nil(t, record)
		require.Error(t, err)

		records, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.TaskStatusFailed, records[0].Status)
		require.NotNil(t, records[0].Error)
		assert.Equal(t, domain.TaskErrorKindDispatch, records[0].Error.Kind)
		assert.Contains(t, records[0].Error.Message, "queue unavailable")
	})

	t.Run("identical payloads produce distinct records", func(t *testing.T) {
		t.Parallel()

		svc, _ := newSubmission(t, &captureEmitter{})
		payload := &domain.LegalQueryPayload{Query: "same question"}

		first, err := svc.Submit(ctx, payload)
		require.NoError(t, err)
		second, err := svc.Submit(ctx, payload)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestNewSubmissionServiceValidation(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryTaskStore(testLogger())
	emitter := &captureEmitter{}

	_, err := NewSubmissionService(nil, emitter, testLogger())
	assert.ErrorIs(t, err, ErrNilStore)

	_, err = NewSubmissionService(s, nil, testLogger())
	assert.ErrorIs(t, err, ErrNilEmitter)

	_, err = NewSubmissionService(s, emitter, nil)
	assert.ErrorIs(t, err, ErrNilLogger)
}
