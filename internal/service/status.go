package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jurisai/jurisai-api/internal/domain"
	"github.com/jurisai/jurisai-api/internal/store"
)

// StatusService answers status queries for task records. Lookups take
// the raw identifier string from the caller; a malformed identifier is
// rejected before the store is consulted.
type StatusService struct {
	store  store.TaskStore
	logger *slog.Logger
}

// NewStatusService creates a status query service over the given store.
func NewStatusService(taskStore store.TaskStore, logger *slog.Logger) (*StatusService, error) {
	if taskStore == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &StatusService{
		store:  taskStore,
		logger: logger.With("component", "status_service"),
	}, nil
}

// Lookup returns a snapshot of the record identified by rawID. A string
// that does not parse as a UUID yields domain.ErrInvalidID; a
// well-formed identifier with no record yields store.ErrTaskNotFound.
func (s *StatusService) Lookup(ctx context.Context, rawID string) (*domain.Task, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid task identifier", domain.ErrInvalidID, rawID)
	}

	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			s.logger.Error("failed to look up task", "task_id", id, "error", err)
		}
		return nil, err
	}
	return record, nil
}

// List returns snapshots of all known records, newest first.
func (s *StatusService) List(ctx context.Context) ([]*domain.Task, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return records, nil
}
