package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		last     *time.Time
		count    int
		expected int
	}{
		{"never active, zero", nil, 0, 1},
		{"never active, positive kept", nil, 4, 4},
		{"just now", ago(0), 5, 5},
		{"10h ago unchanged", ago(10 * time.Hour), 5, 5},
		{"just under 24h", ago(ConsecutiveWindow - time.Nanosecond), 5, 5},
		{"exactly 24h increments", ago(ConsecutiveWindow), 5, 6},
		{"30h ago increments", ago(30 * time.Hour), 5, 6},
		{"from zero increments", ago(30 * time.Hour), 0, 1},
		{"just under 48h increments", ago(LapseWindow - time.Nanosecond), 2, 3},
		{"exactly 48h resets to one", ago(LapseWindow), 5, 1},
		{"70h ago resets to one", ago(70 * time.Hour), 5, 1},
		{"lapsed at zero stays zero", ago(70 * time.Hour), 0, 0},
		{"last active in future unchanged", ago(-time.Hour), 3, 3},
		{"negative stored count clamps", nil, -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Next(tt.last, tt.count, now))
		})
	}
}

func TestNext_NeverNegative(t *testing.T) {
	for h := 0; h < 24*10; h++ {
		for c := 0; c < 4; c++ {
			assert.GreaterOrEqual(t, Next(ago(time.Duration(h)*time.Hour), c, now), 0)
		}
	}
}

func TestCutoff(t *testing.T) {
	assert.Equal(t, time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC), Cutoff(now))
}

func TestIsLapsed(t *testing.T) {
	assert.False(t, IsLapsed(nil, now))
	assert.False(t, IsLapsed(ago(40*time.Hour), now))
	assert.False(t, IsLapsed(ago(LapseWindow), now))
	assert.True(t, IsLapsed(ago(50*time.Hour), now))
	assert.True(t, IsLapsed(ago(60*time.Hour), now))
}

func TestEvaluate(t *testing.T) {
	assert.Equal(t, &Event{Previous: 0, Current: 1}, Evaluate(0, 1))
	assert.Equal(t, &Event{Previous: 5, Current: 6}, Evaluate(5, 6))
	assert.Nil(t, Evaluate(5, 5))
	assert.Nil(t, Evaluate(5, 1))
	assert.Nil(t, Evaluate(0, 0))
}

// Scenarios from the product description, end to end through Next+Evaluate.
func TestScenarios(t *testing.T) {
	tests := []struct {
		name      string
		last      *time.Time
		count     int
		expected  int
		wantEvent *Event
	}{
		{"new user", nil, 0, 1, &Event{Previous: 0, Current: 1}},
		{"active 10h ago", ago(10 * time.Hour), 5, 5, nil},
		{"active 30h ago", ago(30 * time.Hour), 5, 6, &Event{Previous: 5, Current: 6}},
		{"active 70h ago", ago(70 * time.Hour), 5, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.last, tt.count, now)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.wantEvent, Evaluate(tt.count, got))
		})
	}
}
