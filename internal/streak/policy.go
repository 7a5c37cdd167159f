package streak

import "time"

const (
	ConsecutiveWindow = 24 * time.Hour
	LapseWindow       = 48 * time.Hour
)

// Next returns the streak count to store for activity at now, given the
// previously stored values. A nil lastActiveAt means no recorded activity.
func Next(lastActiveAt *time.Time, streakCount int, now time.Time) int {
	if streakCount < 0 {
		streakCount = 0
	}

	if lastActiveAt == nil {
		return max(streakCount, 1)
	}

	elapsed := now.Sub(*lastActiveAt)
	switch {
	case elapsed < ConsecutiveWindow:
		return streakCount
	case elapsed < LapseWindow:
		return streakCount + 1
	case streakCount > 0:
		return 1
	default:
		return 0
	}
}

// Cutoff is the instant before which the last activity counts as lapsed.
func Cutoff(now time.Time) time.Time {
	return now.Add(-LapseWindow)
}

// IsLapsed mirrors the reclaimer's predicate: lastActiveAt strictly before
// Cutoff(now). No recorded activity is never lapsed.
func IsLapsed(lastActiveAt *time.Time, now time.Time) bool {
	if lastActiveAt == nil {
		return false
	}
	return lastActiveAt.Before(Cutoff(now))
}
