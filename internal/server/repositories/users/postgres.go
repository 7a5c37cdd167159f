package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const profileColumns = `id, email, full_name, nickname, xp, streak_count, last_active_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Nickname, &p.XP, &p.StreakCount, &p.LastActiveAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.NewUser) (string, error) {

	query :=
		`INSERT INTO users (email, nickname, full_name, password_salt, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Nickname, user.FullName, user.Salt, user.PasswordHash).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, password_salt, password_hash, created_at FROM users
		 WHERE email = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.Salt, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) GetActivity(ctx context.Context, userID string) (*models.Activity, error) {
	query :=
		`SELECT last_active_at, streak_count FROM users
		 WHERE id = $1`

	a := &models.Activity{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&a.LastActiveAt, &a.StreakCount)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) UpdateActivity(ctx context.Context, userID string, lastActiveAt time.Time, streakCount int) (*models.UserProfile, error) {
	query :=
		`UPDATE users SET last_active_at = $2, streak_count = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + profileColumns

	return scanProfile(r.db.QueryRowContext(ctx, query, userID, lastActiveAt, streakCount))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.UserProfile, error) {
	query :=
		`UPDATE users SET full_name = COALESCE($2, full_name), nickname = COALESCE($3, nickname), updated_at = now()
		 WHERE id = $1
		 RETURNING ` + profileColumns

	return scanProfile(r.db.QueryRowContext(ctx, query, userID, upd.FullName, upd.Nickname))
}

func (r *PostgresRepository) ResetLapsedStreaks(ctx context.Context, cutoff time.Time) ([]string, error) {
	query :=
		`UPDATE users SET streak_count = 0
		 WHERE last_active_at < $1 AND streak_count > 0
		 RETURNING id`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}
