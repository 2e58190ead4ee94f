package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RetentionSweeperConfig holds configuration for the retention sweeper.
type RetentionSweeperConfig struct {
	// TTL is how long a terminal task is kept after completion.
	// A zero TTL disables the sweeper.
	TTL time.Duration

	// Interval is how often expired tasks are evicted.
	// If zero, defaults to 10 minutes.
	Interval time.Duration
}

// RetentionSweeper periodically evicts terminal tasks past their TTL,
// keeping the store bounded without touching non-terminal records.
type RetentionSweeper struct {
	evictor    Evictor
	config     RetentionSweeperConfig
	logger     *slog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewRetentionSweeper creates a sweeper over the given evictor.
func NewRetentionSweeper(evictor Evictor, config RetentionSweeperConfig, logger *slog.Logger) *RetentionSweeper {
	if config.Interval == 0 {
		config.Interval = 10 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RetentionSweeper{
		evictor:    evictor,
		config:     config,
		logger:     logger.With("component", "retention_sweeper"),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start begins the eviction loop. It is a no-op when the TTL is zero.
func (s *RetentionSweeper) Start() {
	if s.config.TTL == 0 {
		s.logger.Info("retention sweeper disabled, tasks are kept indefinitely")
		return
	}

	s.wg.Add(1)
	go s.run()
	s.logger.Info("retention sweeper started",
		"ttl", s.config.TTL,
		"interval", s.config.Interval)
}

// Stop terminates the eviction loop and waits for it to exit.
func (s *RetentionSweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *RetentionSweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.evictor.EvictExpired(s.ctx, s.config.TTL, time.Now()); err != nil {
				s.logger.Error("failed to evict expired tasks", "error", err)
			}
		}
	}
}
