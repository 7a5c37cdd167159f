// Package users declares and implements storage for user accounts, profiles
// and the streak activity fields.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/signify/internal/server/models"
)

type Repository interface {
	// Create inserts a users row with no recorded activity and a zero streak
	// and returns its id. A taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.NewUser) (string, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	GetActivity(ctx context.Context, userID string) (*models.Activity, error)
	// UpdateActivity writes both streak fields in one statement and returns
	// the updated profile.
	UpdateActivity(ctx context.Context, userID string, lastActiveAt time.Time, streakCount int) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.UserProfile, error)
	// ResetLapsedStreaks zeroes every positive streak whose last activity is
	// before cutoff, in one statement, and returns the affected ids.
	ResetLapsedStreaks(ctx context.Context, cutoff time.Time) ([]string, error)
}
