package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/google/uuid"
)

const maxPracticeFrames = 1200

// Scorer grades a practice attempt.
type Scorer interface {
	Score(ctx context.Context, attempt *models.PracticeAttempt) (score float64, feedback string, err error)
}

// MockScorer stands in for the inference pipeline.
type MockScorer struct{}

func (MockScorer) Score(context.Context, *models.PracticeAttempt) (float64, string, error) {
	return 73.5, "Mock feedback: inference pipeline not yet wired.", nil
}

// PracticeHistory lists the user's completed practice sessions. An empty
// mode lists all modes.
func (s *Session) PracticeHistory(ctx context.Context, mode string) ([]models.PracticeSession, error) {
	if mode != "" && !models.ValidMode(mode) {
		return nil, fmt.Errorf("%w: unknown mode %q", common.ErrorValidation, mode)
	}

	var result []models.PracticeSession
	err := s.store.asUser(ctx, s.userID, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.store.repos.Practice(tx).ListCompleted(ctx, s.userID, mode, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ScorePractice grades an attempt and stores it as a completed session,
// folding the score into the day's metric in the same transaction.
func (s *Session) ScorePractice(ctx context.Context, scorer Scorer, attempt *models.PracticeAttempt) (*models.PracticeScore, error) {
	if err := validateAttempt(attempt); err != nil {
		return nil, err
	}

	score, feedback, err := scorer.Score(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("score attempt: %w", err)
	}

	now := s.now().UTC()
	rawMetrics, err := json.Marshal(map[string]any{
		"frame_count": len(attempt.Frames),
		"duration_ms": attempt.Frames[len(attempt.Frames)-1].TimestampMS - attempt.Frames[0].TimestampMS,
	})
	if err != nil {
		return nil, err
	}
	feedbackJSON, err := json.Marshal(map[string]string{"summary": feedback})
	if err != nil {
		return nil, err
	}

	ps := &models.PracticeSession{
		UserID:      s.userID,
		LessonID:    attempt.LessonID,
		Mode:        attempt.Mode,
		Score:       &score,
		CompletedAt: &now,
		RawMetrics:  rawMetrics,
		Feedback:    feedbackJSON,
	}

	var id string
	err = s.store.asUser(ctx, s.userID, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.store.repos.Practice(tx)
		var err error
		if id, err = repo.Create(ctx, ps); err != nil {
			return err
		}
		return repo.RecordDailyMetric(ctx, s.userID, now, score)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "practice scored", "user_id", s.userID, "practice_session_id", id, "score", score)
	return &models.PracticeScore{SessionID: id, Score: score, Feedback: feedback}, nil
}

func validateAttempt(a *models.PracticeAttempt) error {
	if a == nil {
		return fmt.Errorf("%w: empty attempt", common.ErrorValidation)
	}
	if !models.ValidMode(a.Mode) {
		return fmt.Errorf("%w: unknown mode %q", common.ErrorValidation, a.Mode)
	}
	if len(a.Frames) == 0 || len(a.Frames) > maxPracticeFrames {
		return fmt.Errorf("%w: frames must contain 1 to %d entries", common.ErrorValidation, maxPracticeFrames)
	}
	for i, f := range a.Frames {
		if f.TimestampMS < 0 {
			return fmt.Errorf("%w: frame %d has a negative timestamp", common.ErrorValidation, i)
		}
		if len(f.Keypoints) == 0 {
			return fmt.Errorf("%w: frame %d has no keypoints", common.ErrorValidation, i)
		}
	}
	if a.LessonID != nil {
		if _, err := uuid.Parse(*a.LessonID); err != nil {
			return fmt.Errorf("%w: lesson_id is not a valid id", common.ErrorValidation)
		}
	}
	return nil
}
