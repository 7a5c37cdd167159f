package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
)

const columns = `user_id, app_theme, prefers_assistive_learning, time_zone, notifications, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scan(row *sql.Row) (*models.UserSettings, error) {
	s := &models.UserSettings{}
	var notifications []byte
	err := row.Scan(&s.UserID, &s.AppTheme, &s.PrefersAssistiveLearning, &s.TimeZone, &notifications, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.Notifications = json.RawMessage(notifications)
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID string) error {
	query := `INSERT INTO user_settings (user_id) VALUES ($1)`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	query := `SELECT ` + columns + ` FROM user_settings WHERE user_id = $1`
	return scan(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) Update(ctx context.Context, userID string, upd models.SettingsUpdate) (*models.UserSettings, error) {
	query :=
		`UPDATE user_settings SET
		   app_theme = COALESCE($2, app_theme),
		   prefers_assistive_learning = COALESCE($3, prefers_assistive_learning),
		   time_zone = COALESCE($4, time_zone),
		   notifications = COALESCE($5::jsonb, notifications),
		   updated_at = now()
		 WHERE user_id = $1
		 RETURNING ` + columns

	var notifications *string
	if upd.Notifications != nil {
		s := string(*upd.Notifications)
		notifications = &s
	}

	return scan(r.db.QueryRowContext(ctx, query, userID, upd.AppTheme, upd.PrefersAssistiveLearning, upd.TimeZone, notifications))
}
