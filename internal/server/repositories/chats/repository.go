// Package chats provides read access to a user's tutoring chat sessions.
package chats

import (
	"context"

	"github.com/dmitrijs2005/signify/internal/server/models"
)

type Repository interface {
	// ListRecent returns the user's chat sessions, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]models.ChatSession, error)
}
