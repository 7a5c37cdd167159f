// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/signify/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a refresh token for userID, bound to the login session
	// sessionID, expiring at now+validity.
	Create(ctx context.Context, userID string, sessionID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string and returns its metadata.
	// Implementations should return a not-found error when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Take atomically removes a refresh token and returns its metadata. A
	// token already taken or never issued yields a not-found error.
	Take(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a non-existent
	// token should not be considered an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes tokens that expired before now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
