// Package streak holds the daily-practice streak policy shared by the
// per-session activity synchronizer and the periodic reclaimer.
//
// A streak grows by one when activity lands in the window that starts
// ConsecutiveWindow after the previous activity and ends LapseWindow after it.
// Activity inside ConsecutiveWindow does not count twice. A gap of LapseWindow
// or more ends the streak.
package streak
