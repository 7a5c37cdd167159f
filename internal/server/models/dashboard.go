package models

import "time"

type DashboardMetrics struct {
	TotalSessions   int                   `json:"totalSessions"`
	AverageScore    *float64              `json:"averageScore"`
	LatestSessionAt *time.Time            `json:"latestSessionAt"`
	WeeklyActivity  []PracticeMetricDaily `json:"weeklyActivity"`
}

type DashboardLesson struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	LessonType      string     `json:"lessonType"`
	Difficulty      *string    `json:"difficulty"`
	LastCompletedAt *time.Time `json:"lastCompletedAt"`
	Mode            string     `json:"mode"`
	Score           *float64   `json:"score"`
}

type DashboardOverview struct {
	Metrics DashboardMetrics  `json:"metrics"`
	Lessons []DashboardLesson `json:"lessons"`
}
