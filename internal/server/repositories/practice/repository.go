// Package practice stores practice sessions and their per-day aggregates.
package practice

import (
	"context"
	"time"

	"github.com/dmitrijs2005/signify/internal/server/models"
)

type Repository interface {
	// ListCompleted returns completed sessions with their lesson, newest
	// first. An empty mode matches every mode; limit <= 0 means no limit.
	ListCompleted(ctx context.Context, userID string, mode string, limit int) ([]models.PracticeSession, error)
	// Create inserts a session and returns its id. An unknown lesson yields
	// common.ErrorValidation.
	Create(ctx context.Context, s *models.PracticeSession) (string, error)
	// RecordDailyMetric folds one scored session into the day's aggregate.
	RecordDailyMetric(ctx context.Context, userID string, day time.Time, score float64) error
	// ListDailyMetrics returns the latest daily aggregates, newest first.
	ListDailyMetrics(ctx context.Context, userID string, limit int) ([]models.PracticeMetricDaily, error)
}
