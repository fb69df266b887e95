package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// PanelRefresher refreshes and stores the home dashboard panel.
type PanelRefresher interface {
	RefreshHome(ctx context.Context) error
}

// SessionPruner drops idle chat sessions.
type SessionPruner interface {
	Prune() int
}

const jobTimeout = 30 * time.Second

// Scheduler periodically refreshes the home panel and prunes idle sessions.
type Scheduler struct {
	scheduler       *gocron.Scheduler
	panels          PanelRefresher
	sessions        SessionPruner
	refreshInterval time.Duration
	pruneInterval   time.Duration
}

// New creates a new Scheduler. Either dependency may be nil, which skips its job.
func New(panels PanelRefresher, refreshInterval time.Duration, sessions SessionPruner, pruneInterval time.Duration) *Scheduler {
	if refreshInterval <= 0 {
		refreshInterval = 15 * time.Minute
	}
	if pruneInterval <= 0 {
		pruneInterval = 5 * time.Minute
	}
	return &Scheduler{
		scheduler:       gocron.NewScheduler(time.UTC),
		panels:          panels,
		sessions:        sessions,
		refreshInterval: refreshInterval,
		pruneInterval:   pruneInterval,
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
// Each job also runs once immediately.
func (s *Scheduler) Start() error {
	if s.panels == nil && s.sessions == nil {
		slog.Info("scheduler: nothing to schedule")
		return nil
	}

	if s.panels != nil {
		if _, err := s.scheduler.Every(s.refreshInterval).Do(s.refreshPanel); err != nil {
			return err
		}
	}
	if s.sessions != nil {
		if _, err := s.scheduler.Every(s.pruneInterval).Do(s.pruneSessions); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce runs every configured job synchronously.
func (s *Scheduler) RunOnce() {
	if s.panels != nil {
		s.refreshPanel()
	}
	if s.sessions != nil {
		s.pruneSessions()
	}
}

func (s *Scheduler) refreshPanel() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := s.panels.RefreshHome(ctx); err != nil {
		slog.Warn("scheduler: panel refresh failed", "err", err)
		return
	}
	slog.Debug("scheduler: panel refreshed", "took", time.Since(start))
}

func (s *Scheduler) pruneSessions() {
	if n := s.sessions.Prune(); n > 0 {
		slog.Info("scheduler: pruned idle sessions", "count", n)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
