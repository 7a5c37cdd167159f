// Package settings stores per-user application settings.
package settings

import (
	"context"

	"github.com/dmitrijs2005/signify/internal/server/models"
)

type Repository interface {
	// Create inserts the default settings row for a new user.
	Create(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*models.UserSettings, error)
	Update(ctx context.Context, userID string, upd models.SettingsUpdate) (*models.UserSettings, error)
}
