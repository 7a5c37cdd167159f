// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Streak sync outcomes.
const (
	SyncFirst       = "first"
	SyncUnchanged   = "unchanged"
	SyncIncremented = "incremented"
	SyncReset       = "reset"
	SyncFailed      = "failed"
)

// Reclaim run results.
const (
	ReclaimOK            = "ok"
	ReclaimError         = "error"
	ReclaimMisconfigured = "misconfigured"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signify_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signify_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Session metrics
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signify_active_sessions",
			Help: "Number of login sessions held in memory",
		},
	)

	StreakSyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signify_streak_syncs_total",
			Help: "Total number of activity synchronizations by outcome",
		},
		[]string{"outcome"},
	)

	StreakEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signify_streak_events_total",
			Help: "Total number of streak increase events raised",
		},
	)

	// Reclaimer metrics
	ReclaimRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signify_reclaim_runs_total",
			Help: "Total number of streak reclaimer runs by result",
		},
		[]string{"result"},
	)

	StreaksReclaimedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signify_streaks_reclaimed_total",
			Help: "Total number of lapsed streaks reset to zero",
		},
	)

	ReclaimDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signify_reclaim_duration_seconds",
			Help:    "Streak reclaimer run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RefreshTokensPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signify_refresh_tokens_purged_total",
			Help: "Total number of expired refresh tokens deleted",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(StreakSyncsTotal)
	prometheus.MustRegister(StreakEventsTotal)
	prometheus.MustRegister(ReclaimRunsTotal)
	prometheus.MustRegister(StreaksReclaimedTotal)
	prometheus.MustRegister(ReclaimDuration)
	prometheus.MustRegister(RefreshTokensPurgedTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures the duration of an operation.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time in seconds on o.
func (t *Timer) ObserveDuration(o prometheus.Observer) {
	o.Observe(t.Duration().Seconds())
}
