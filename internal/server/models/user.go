package models

import "time"

// User carries the credential columns of a users row. It never leaves the
// server.
type User struct {
	ID           string
	Email        string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}

// UserProfile is the public view of a users row.
type UserProfile struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	Nickname string  `json:"nickname"`
	XP       int     `json:"xp"`
	// StreakCount is never negative.
	StreakCount int `json:"streak_count"`
	// LastActiveAt is nil until the first recorded activity.
	LastActiveAt *time.Time `json:"last_active_at"`
}

// Activity is the streak state shared by the activity synchronizer and the
// reclaimer.
type Activity struct {
	LastActiveAt *time.Time
	StreakCount  int
}

// NewUser is the input for creating a users row.
type NewUser struct {
	Email        string
	Nickname     string
	FullName     *string
	Salt         []byte
	PasswordHash []byte
}

// ProfileUpdate lists editable profile fields. Nil fields are left as is.
type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Nickname == nil
}
