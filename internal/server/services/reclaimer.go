package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/metrics"
	"github.com/dmitrijs2005/signify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/signify/internal/streak"
)

// ReclaimResult is the outcome of one reclaimer run.
type ReclaimResult struct {
	Updated   int       `json:"updated"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Reclaimer resets to zero the streaks of users who have been inactive for
// longer than the lapse window. It keeps no state between runs.
type Reclaimer struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger
	now   func() time.Time
}

// NewReclaimer returns a reclaimer working on the elevated service
// connection db. A nil db makes every run fail with
// common.ErrMissingCredentials.
func NewReclaimer(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *Reclaimer {
	return &Reclaimer{
		db:    db,
		repos: m,
		log:   log.With("module", "reclaimer"),
		now:   time.Now,
	}
}

// Run executes one reclaim pass as a single conditional update. It is
// idempotent for a fixed now.
func (r *Reclaimer) Run(ctx context.Context) (*ReclaimResult, error) {
	if r.db == nil {
		metrics.ReclaimRunsTotal.WithLabelValues(metrics.ReclaimMisconfigured).Inc()
		r.log.Error(ctx, "reclaimer has no service connection")
		return nil, common.ErrMissingCredentials
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReclaimDuration)

	now := r.now().UTC()
	cutoff := streak.Cutoff(now)

	ids, err := r.repos.Users(r.db).ResetLapsedStreaks(ctx, cutoff)
	if err != nil {
		metrics.ReclaimRunsTotal.WithLabelValues(metrics.ReclaimError).Inc()
		r.log.Error(ctx, "failed to reset streaks", "cutoff", cutoff, "error", err)
		return nil, err
	}

	metrics.ReclaimRunsTotal.WithLabelValues(metrics.ReclaimOK).Inc()
	metrics.StreaksReclaimedTotal.Add(float64(len(ids)))
	r.log.Info(ctx, "streaks reclaimed", "updated", len(ids), "cutoff", cutoff)

	return &ReclaimResult{Updated: len(ids), CheckedAt: now}, nil
}
