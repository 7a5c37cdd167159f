package lessons

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside an ILIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (r *PostgresRepository) Search(ctx context.Context, term string, limit int) ([]models.Lesson, error) {
	query :=
		`SELECT id, title, description, lesson_code, lesson_type, difficulty_level, cover_media_key, published_at
		 FROM lessons
		 WHERE is_active AND ($1::text = '' OR title ILIKE '%' || $1::text || '%' ESCAPE '\')
		 ORDER BY published_at DESC NULLS LAST
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, escapeLike(strings.TrimSpace(term)), limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Lesson, 0)
	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.LessonCode, &l.LessonType, &l.DifficultyLevel, &l.CoverMediaKey, &l.PublishedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
