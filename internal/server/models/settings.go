package models

import (
	"encoding/json"
	"time"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type UserSettings struct {
	UserID                   string          `json:"user_id"`
	AppTheme                 string          `json:"app_theme"`
	PrefersAssistiveLearning bool            `json:"prefers_assistive_learning"`
	TimeZone                 *string         `json:"time_zone"`
	Notifications            json.RawMessage `json:"notifications"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// SettingsUpdate lists editable settings. Nil fields are left as is.
type SettingsUpdate struct {
	AppTheme                 *string          `json:"app_theme,omitempty"`
	PrefersAssistiveLearning *bool            `json:"prefers_assistive_learning,omitempty"`
	TimeZone                 *string          `json:"time_zone,omitempty"`
	Notifications            *json.RawMessage `json:"notifications,omitempty"`
}

func (u SettingsUpdate) IsEmpty() bool {
	return u.AppTheme == nil && u.PrefersAssistiveLearning == nil && u.TimeZone == nil && u.Notifications == nil
}
