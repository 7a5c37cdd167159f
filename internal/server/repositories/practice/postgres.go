package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func (r *PostgresRepository) ListCompleted(ctx context.Context, userID string, mode string, limit int) ([]models.PracticeSession, error) {
	query :=
		`SELECT ps.id, ps.lesson_id, ps.mode, ps.score, ps.completed_at, ps.raw_metrics, ps.feedback,
		        l.id, l.title, l.lesson_type, l.difficulty_level
		 FROM practice_sessions ps
		 LEFT JOIN lessons l ON l.id = ps.lesson_id
		 WHERE ps.user_id = $1 AND ps.completed_at IS NOT NULL AND ($2::text = '' OR ps.mode = $2::text)
		 ORDER BY ps.completed_at DESC
		 LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, userID, mode, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.PracticeSession, 0)
	for rows.Next() {
		s := models.PracticeSession{UserID: userID}
		var (
			rawMetrics, feedback        []byte
			lessonID, title, lessonType *string
			difficulty                  *string
		)
		if err := rows.Scan(&s.ID, &s.LessonID, &s.Mode, &s.Score, &s.CompletedAt, &rawMetrics, &feedback,
			&lessonID, &title, &lessonType, &difficulty); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.RawMetrics = json.RawMessage(rawMetrics)
		s.Feedback = json.RawMessage(feedback)
		if lessonID != nil {
			s.Lesson = &models.LessonSummary{ID: *lessonID, DifficultyLevel: difficulty}
			if title != nil {
				s.Lesson.Title = *title
			}
			if lessonType != nil {
				s.Lesson.LessonType = *lessonType
			}
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func jsonArg(m json.RawMessage) string {
	if len(m) == 0 {
		return "{}"
	}
	return string(m)
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.PracticeSession) (string, error) {
	query :=
		`INSERT INTO practice_sessions (user_id, lesson_id, mode, score, completed_at, raw_metrics, feedback)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb)
		 RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.LessonID, s.Mode, s.Score, s.CompletedAt, jsonArg(s.RawMetrics), jsonArg(s.Feedback)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return "", fmt.Errorf("%w: unknown lesson", common.ErrorValidation)
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) RecordDailyMetric(ctx context.Context, userID string, day time.Time, score float64) error {
	query :=
		`INSERT INTO practice_metrics_daily (user_id, metric_day, sessions_completed, avg_score, score_sum)
		 VALUES ($1, $2::date, 1, $3, $3)
		 ON CONFLICT (user_id, metric_day) DO UPDATE SET
		   sessions_completed = practice_metrics_daily.sessions_completed + 1,
		   score_sum = COALESCE(practice_metrics_daily.score_sum, 0) + EXCLUDED.score_sum,
		   avg_score = (COALESCE(practice_metrics_daily.score_sum, 0) + EXCLUDED.score_sum)
		               / (practice_metrics_daily.sessions_completed + 1)`

	if _, err := r.db.ExecContext(ctx, query, userID, day.Format(time.DateOnly), score); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListDailyMetrics(ctx context.Context, userID string, limit int) ([]models.PracticeMetricDaily, error) {
	query :=
		`SELECT metric_day, sessions_completed, avg_score, score_sum
		 FROM practice_metrics_daily
		 WHERE user_id = $1
		 ORDER BY metric_day DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.PracticeMetricDaily, 0)
	for rows.Next() {
		var m models.PracticeMetricDaily
		if err := rows.Scan(&m.MetricDay, &m.SessionsCompleted, &m.AvgScore, &m.ScoreSum); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
