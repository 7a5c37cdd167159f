package models

import "time"

type Lesson struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description"`
	LessonCode      string     `json:"lesson_code"`
	LessonType      string     `json:"lesson_type"`
	DifficultyLevel *string    `json:"difficulty_level"`
	PublishedAt     *time.Time `json:"published_at"`
	// CoverMediaKey is the object-storage key of the cover image.
	CoverMediaKey *string `json:"-"`
	// CoverURL is a short-lived presigned URL for CoverMediaKey.
	CoverURL string `json:"cover_url,omitempty"`
}

// LessonSummary is the lesson part of a practice session listing.
type LessonSummary struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	LessonType      string  `json:"lesson_type"`
	DifficultyLevel *string `json:"difficulty_level"`
}
