package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"trivia-service/internal/domain"
	"trivia-service/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultRetentionHorizon is how long a game and its data are kept.
	DefaultRetentionHorizon = 72 * time.Hour
	// MinRetentionHorizon keeps sweeps well clear of games still being played.
	MinRetentionHorizon = 48 * time.Hour
	// DefaultSweepInterval is the pause between sweeps.
	DefaultSweepInterval = time.Hour
)

// SweepTarget is the slice of the game layer the sweeper needs; *GameService satisfies it.
type SweepTarget interface {
	GetAllGames(ctx context.Context) ([]domain.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// SweepReport summarises one retention pass.
type SweepReport struct {
	Scanned int
	Deleted int
	Failed  int
}

// RetentionSweeper deletes games older than the horizon. It sweeps once when
// started and then on every interval until stopped.
type RetentionSweeper struct {
	games    SweepTarget
	horizon  time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SweeperOption customises a RetentionSweeper.
type SweeperOption func(*RetentionSweeper)

func WithSweeperClock(now func() time.Time) SweeperOption {
	return func(s *RetentionSweeper) { s.now = now }
}

func WithSweeperLogger(logger *log.Logger) SweeperOption {
	return func(s *RetentionSweeper) { s.logger = logger }
}

// NewRetentionSweeper does not start anything; call Start or Run.
func NewRetentionSweeper(games SweepTarget, horizon, interval time.Duration, opts ...SweeperOption) *RetentionSweeper {
	if horizon <= 0 {
		horizon = DefaultRetentionHorizon
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s := &RetentionSweeper{
		games:    games,
		horizon:  horizon,
		interval: interval,
		now:      time.Now,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RetentionSweeper) Horizon() time.Duration {
	return s.horizon
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *RetentionSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// Start runs the sweeper in the background. Calling Start twice is a no-op.
func (s *RetentionSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		_ = s.Run(ctx)
	}(s.done)
}

// Stop cancels a started sweeper and waits for the current pass to return.
func (s *RetentionSweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SweepOnce deletes every game created before now minus the horizon. A failure
// on one game is logged and the pass continues; panics are recovered so the
// next pass still runs.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) (report SweepReport) {
	timer := prometheus.NewTimer(metrics.SweepDuration)
	defer timer.ObserveDuration()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("retention sweep panic: %v", r)
			report.Failed++
		}
	}()

	games, err := s.games.GetAllGames(ctx)
	if err != nil {
		s.logger.Printf("retention sweep: list games: %v", err)
		report.Failed++
		return report
	}
	report.Scanned = len(games)

	cutoff := s.now().Add(-s.horizon)
	for _, g := range games {
		if !g.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.deleteOne(ctx, g.ID); err != nil {
			s.logger.Printf("retention sweep: delete game %s: %v", g.ID, err)
			report.Failed++
			continue
		}
		report.Deleted++
		metrics.GamesDeleted.WithLabelValues("retention").Inc()
	}
	if report.Deleted > 0 {
		s.logger.Printf("cleaned up %d games older than %s", report.Deleted, s.horizon)
	}
	return report
}

func (s *RetentionSweeper) deleteOne(ctx context.Context, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.games.DeleteGame(ctx, id)
}
