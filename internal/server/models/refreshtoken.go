package models

import "time"

// RefreshToken is a server-side refresh token bound to one login session.
type RefreshToken struct {
	Token     string
	UserID    string
	SessionID string
	Expires   time.Time
	CreatedAt time.Time
}
