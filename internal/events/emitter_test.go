package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisai/jurisai-api/internal/domain"
)

type recordingHandler struct {
	events []*TaskDispatchEvent
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *TaskDispatchEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	t.Run("delivers event to all handlers", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEventEmitter(testLogger())
		first := &recordingHandler{}
		second := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := NewTaskDispatchEvent(uuid.New(), domain.TaskKindLegalQuery)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		require.Len(t, first.events, 1)
		require.Len(t, second.events, 1)
		assert.Equal(t, event.TaskID, first.events[0].TaskID)
	})

	t.Run("handler failure does not block later handlers", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEventEmitter(testLogger())
		failing := &recordingHandler{err: errors.New("queue full")}
		healthy := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		err := emitter.EmitEvent(context.Background(),
			NewTaskDispatchEvent(uuid.New(), domain.TaskKindClientIntake))
		assert.EqualError(t, err, "queue full")
		assert.Len(t, healthy.events, 1)
	})

	t.Run("no handlers is not an error", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEventEmitter(testLogger())
		err := emitter.EmitEvent(context.Background(),
			NewTaskDispatchEvent(uuid.New(), domain.TaskKindDocumentAnalysis))
		assert.NoError(t, err)
	})
}
