package services

import (
	"context"

	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
)

const chatSessionLimit = 20

// ChatSessions returns the user's latest chat sessions.
func (s *Session) ChatSessions(ctx context.Context) ([]models.ChatSession, error) {
	var result []models.ChatSession
	err := s.store.asUser(ctx, s.userID, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.store.repos.Chats(tx).ListRecent(ctx, s.userID, chatSessionLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
