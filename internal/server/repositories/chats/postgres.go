package chats

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.ChatSession, error) {
	query :=
		`SELECT id, chat_name, created_at, updated_at, is_active, source_lesson_id
		 FROM chat_sessions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ChatSession, 0)
	for rows.Next() {
		var c models.ChatSession
		if err := rows.Scan(&c.ID, &c.ChatName, &c.CreatedAt, &c.UpdatedAt, &c.IsActive, &c.SourceLessonID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
