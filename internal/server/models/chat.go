package models

import "time"

type ChatSession struct {
	ID             string    `json:"id"`
	ChatName       *string   `json:"chat_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	IsActive       bool      `json:"is_active"`
	SourceLessonID *string   `json:"source_lesson_id"`
}
