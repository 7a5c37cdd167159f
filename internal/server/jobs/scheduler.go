// Package jobs runs the server's periodic background work: the streak
// reclaimer, the refresh token purge and idle session pruning.
package jobs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/metrics"
	"github.com/dmitrijs2005/signify/internal/server/services"
	"github.com/go-co-op/gocron"
)

const (
	tokenPurgeInterval   = time.Hour
	sessionPruneInterval = 10 * time.Minute
)

// Reclaimer resets lapsed streaks.
type Reclaimer interface {
	Run(ctx context.Context) (*services.ReclaimResult, error)
}

// TokenPurger deletes expired refresh tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// SessionPruner drops sessions idle for longer than maxIdle.
type SessionPruner interface {
	PruneIdle(ctx context.Context, maxIdle time.Duration) int
}

type Options struct {
	ReclaimEnabled  bool
	ReclaimInterval time.Duration
	// SessionMaxIdle is how long an unused session is kept in memory.
	SessionMaxIdle time.Duration
}

// Scheduler manages scheduled tasks for the server. Every job runs in
// singleton mode, so a slow run is never overlapped by the next one.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reclaimer Reclaimer
	tokens    TokenPurger
	sessions  SessionPruner
	opts      Options
	log       logging.Logger
}

// New creates a new scheduler instance.
func New(reclaimer Reclaimer, tokens TokenPurger, sessions SessionPruner, opts Options, log logging.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		reclaimer: reclaimer,
		tokens:    tokens,
		sessions:  sessions,
		opts:      opts,
		log:       log.With("module", "jobs"),
	}
}

// Start registers all jobs and runs the scheduler in the background. Jobs
// receive ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.register(ctx); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info(ctx, "scheduler started", "jobs", s.scheduler.Len())
	return nil
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) register(ctx context.Context) error {
	if s.opts.ReclaimEnabled && s.opts.ReclaimInterval > 0 {
		if _, err := s.scheduler.Every(s.opts.ReclaimInterval).Do(s.reclaim, ctx); err != nil {
			return err
		}
	}
	if _, err := s.scheduler.Every(tokenPurgeInterval).Do(s.purgeTokens, ctx); err != nil {
		return err
	}
	if s.opts.SessionMaxIdle > 0 {
		if _, err := s.scheduler.Every(sessionPruneInterval).Do(s.pruneSessions, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) reclaim(ctx context.Context) {
	res, err := s.reclaimer.Run(ctx)
	if err != nil {
		s.log.Error(ctx, "scheduled reclaim failed", "error", err)
		return
	}
	s.log.Debug(ctx, "scheduled reclaim done", "updated", res.Updated)
}

func (s *Scheduler) purgeTokens(ctx context.Context) {
	n, err := s.tokens.PurgeExpiredTokens(ctx)
	if err != nil {
		s.log.Error(ctx, "refresh token purge failed", "error", err)
		return
	}
	metrics.RefreshTokensPurgedTotal.Add(float64(n))
	if n > 0 {
		s.log.Info(ctx, "expired refresh tokens purged", "count", n)
	}
}

func (s *Scheduler) pruneSessions(ctx context.Context) {
	s.sessions.PruneIdle(ctx, s.opts.SessionMaxIdle)
}
