package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer(t *testing.T) {
	timer := NewTimer()
	require.NotNil(t, timer)
	assert.False(t, timer.start.IsZero())

	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), 5*time.Millisecond)
}

func TestTimerObserveDuration(t *testing.T) {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_timer_seconds", Help: "test"})

	NewTimer().ObserveDuration(h)

	assert.Equal(t, 1, testutil.CollectAndCount(h))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(StreakSyncsTotal.WithLabelValues(SyncIncremented))
	StreakSyncsTotal.WithLabelValues(SyncIncremented).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(StreakSyncsTotal.WithLabelValues(SyncIncremented)))

	before = testutil.ToFloat64(StreaksReclaimedTotal)
	StreaksReclaimedTotal.Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(StreaksReclaimedTotal))
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	ReclaimRunsTotal.WithLabelValues(ReclaimOK).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signify_reclaim_runs_total")
}
