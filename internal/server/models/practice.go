package models

import (
	"encoding/json"
	"time"
)

const (
	ModeWord      = "word"
	ModeSentence  = "sentence"
	ModeFreestyle = "freestyle"
)

// ValidMode reports whether m is a known practice mode.
func ValidMode(m string) bool {
	switch m {
	case ModeWord, ModeSentence, ModeFreestyle:
		return true
	}
	return false
}

type PracticeSession struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	LessonID    *string         `json:"lesson_id"`
	Mode        string          `json:"mode"`
	Score       *float64        `json:"score"`
	CompletedAt *time.Time      `json:"completed_at"`
	RawMetrics  json.RawMessage `json:"raw_metrics"`
	Feedback    json.RawMessage `json:"feedback"`
	Lesson      *LessonSummary  `json:"lesson"`
}

type PracticeMetricDaily struct {
	MetricDay         time.Time `json:"metric_day"`
	SessionsCompleted int       `json:"sessions_completed"`
	AvgScore          *float64  `json:"avg_score"`
	ScoreSum          *float64  `json:"score_sum"`
}

// PracticeFrame is one captured pose frame of an attempt.
type PracticeFrame struct {
	TimestampMS int64       `json:"timestamp_ms"`
	Keypoints   [][]float64 `json:"keypoints"`
}

// PracticeAttempt is a scoring request.
type PracticeAttempt struct {
	LessonID *string         `json:"lesson_id"`
	Mode     string          `json:"mode"`
	Frames   []PracticeFrame `json:"frames"`
}

type PracticeScore struct {
	SessionID string  `json:"session_id"`
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback"`
}
