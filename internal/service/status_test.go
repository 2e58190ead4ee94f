package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/store"
)

func TestStatusServiceLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemoryTaskStore(testLogger())
	svc, err := NewStatusService(s, testLogger())
	require.NoError(t, err)

	record, err := domain.NewTask(&domain.LegalQueryPayload{Query: "q"})
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, record))

	t.Run("returns the record for a known identifier", func(t *testing.T) {
		t.Parallel()

		got, err := svc.Lookup(ctx, record.ID.String())
		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, domain.TaskStatusPending, got.Status)
	})

	t.Run("rejects a malformed identifier before hitting the store", func(t *testing.T) {
		t.Parallel()

		got, err := svc.Lookup(ctx, "not-a-uuid")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("distinguishes a well-formed unknown identifier", func(t *testing.T) {
		t.Parallel()

		got, err := svc.Lookup(ctx, uuid.New().String())
		assert.Nil(t, got)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NotErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("returned snapshot is isolated from the store", func(t *testing.T) {
		t.Parallel()

		got, err := svc.Lookup(ctx, record.ID.String())
		require.NoError(t, err)
		got.Status = domain.TaskStatusCompleted

		again, err := svc.Lookup(ctx, record.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, again.Status)
	})
}

func TestStatusServiceList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemoryTaskStore(testLogger())
	svc, err := NewStatusService(s, testLogger())
	require.NoError(t, err)

	records, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	for i := 0; i < 3; i++ {
		record, err := domain.NewTask(&domain.LegalQueryPayload{Query: "q"})
		require.NoError(t, err)
		require.NoError(t, s.Create(ctx, record))
	}

	records, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
