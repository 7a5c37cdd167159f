package services

import (
	"context"

	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
)

const (
	dashboardSessionLimit = 30
	dashboardMetricLimit  = 14
)

// Overview builds the dashboard from the user's latest completed sessions
// and daily metrics.
func (s *Session) Overview(ctx context.Context) (*models.DashboardOverview, error) {
	var (
		sessions []models.PracticeSession
		daily    []models.PracticeMetricDaily
	)

	err := s.store.asUser(ctx, s.userID, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.store.repos.Practice(tx)
		var err error
		if sessions, err = repo.ListCompleted(ctx, s.userID, "", dashboardSessionLimit); err != nil {
			return err
		}
		daily, err = repo.ListDailyMetrics(ctx, s.userID, dashboardMetricLimit)
		return err
	})
	if err != nil {
		return nil, err
	}

	return buildOverview(sessions, daily), nil
}

// buildOverview expects sessions newest first.
func buildOverview(sessions []models.PracticeSession, daily []models.PracticeMetricDaily) *models.DashboardOverview {
	o := &models.DashboardOverview{
		Metrics: models.DashboardMetrics{
			TotalSessions:  len(sessions),
			WeeklyActivity: daily,
		},
		Lessons: make([]models.DashboardLesson, 0),
	}
	if o.Metrics.WeeklyActivity == nil {
		o.Metrics.WeeklyActivity = make([]models.PracticeMetricDaily, 0)
	}

	if len(sessions) > 0 {
		o.Metrics.LatestSessionAt = sessions[0].CompletedAt
	}

	var (
		sum    float64
		scored int
	)
	seen := make(map[string]struct{})
	for _, ps := range sessions {
		if ps.Score != nil {
			sum += *ps.Score
			scored++
		}
		if ps.Lesson == nil {
			continue
		}
		if _, ok := seen[ps.Lesson.ID]; ok {
			continue
		}
		seen[ps.Lesson.ID] = struct{}{}
		o.Lessons = append(o.Lessons, models.DashboardLesson{
			ID:              ps.Lesson.ID,
			Title:           ps.Lesson.Title,
			LessonType:      ps.Lesson.LessonType,
			Difficulty:      ps.Lesson.DifficultyLevel,
			LastCompletedAt: ps.CompletedAt,
			Mode:            ps.Mode,
			Score:           ps.Score,
		})
	}
	if scored > 0 {
		avg := sum / float64(scored)
		o.Metrics.AverageScore = &avg
	}

	return o
}
