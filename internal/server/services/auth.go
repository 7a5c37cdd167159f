package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/cryptox"
	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/auth"
	"github.com/dmitrijs2005/signify/internal/server/config"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/server/repositories/repomanager"
)

const minPasswordLength = 8

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	SessionID    string `json:"-"`
}

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Nickname string  `json:"nickname"`
	FullName *string `json:"full_name"`
}

// AuthService provides authentication-related operations:
// - Register: create users with their default settings
// - Login: verify credentials, open a session and mint tokens
// - Refresh: rotate refresh tokens and mint new access tokens
// - Logout: revoke the refresh token and drop the session
//
// Account rows are read before any user principal exists, so db is expected
// to be a connection that row-level security does not restrict.
type AuthService struct {
	store                        store
	sessions                     *SessionService
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, sessions *SessionService, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		store:                        store{db: db, repos: m},
		sessions:                     sessions,
		log:                          log.With("module", "auth"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Register creates a user with no recorded activity and a zero streak,
// together with default settings, in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.UserProfile, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}
	nickname := strings.TrimSpace(in.Nickname)
	if nickname == "" {
		nickname = email[:strings.IndexByte(email, '@')]
	}

	salt, hash := cryptox.HashPassword(in.Password)
	newUser := &models.NewUser{
		Email:        email,
		Nickname:     nickname,
		FullName:     in.FullName,
		Salt:         salt,
		PasswordHash: hash,
	}

	var profile *models.UserProfile
	err = dbx.WithTx(ctx, s.store.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.store.repos.Users(tx)
		id, err := users.Create(ctx, newUser)
		if err != nil {
			return err
		}
		if err := s.store.repos.Settings(tx).Create(ctx, id); err != nil {
			return err
		}
		profile, err = users.GetProfile(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", profile.ID)
	return profile, nil
}

// Login verifies the password and, on success, opens a new session and
// returns its TokenPair. Unknown emails and wrong passwords both yield
// common.ErrorUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.repos.Users(s.store.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep timing close to the found path
			cryptox.VerifyPassword(password, s.getRandomSalt(), nil)
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "failed to look up user", "error", err)
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword(password, user.Salt, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	sess := s.sessions.Open(user.ID)
	pair, err := s.generateTokenPair(ctx, user.ID, sess.ID(), s.store.db)
	if err != nil {
		s.sessions.Close(sess.ID())
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID, "session_id", sess.ID())
	return pair, nil
}

// Refresh consumes a refresh token and returns a fresh TokenPair for the
// same session. Consuming and reissuing happen in one transaction, so a
// token replayed concurrently yields common.ErrorUnauthorized for all but
// one caller. Expired tokens yield common.ErrRefreshTokenExpired.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		token *models.RefreshToken
		pair  *TokenPair
	)
	if err := dbx.WithTx(ctx, s.store.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		token, err = s.store.repos.RefreshTokens(tx).Take(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error taking refresh token: %w", err)
		}
		if token.Expires.Before(s.now()) {
			return common.ErrRefreshTokenExpired
		}
		pair, err = s.generateTokenPair(ctx, token.UserID, token.SessionID, tx)
		return err
	}); err != nil {
		return nil, err
	}

	if _, err := s.sessions.Resume(token.SessionID, token.UserID); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes refreshToken (when given and owned by the session) and
// drops the session.
func (s *AuthService) Logout(ctx context.Context, sessionID, refreshToken string) error {
	defer s.sessions.Close(sessionID)

	if refreshToken == "" {
		return nil
	}

	repo := s.store.repos.RefreshTokens(s.store.db)
	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if token.SessionID != sessionID {
		return common.ErrorUnauthorized
	}
	return repo.Delete(ctx, refreshToken)
}

// Authenticate resolves an access token to its live session.
func (s *AuthService) Authenticate(accessToken string) (*Session, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(claims.SessionID, claims.UserID)
}

// PurgeExpiredTokens deletes refresh tokens that are past their expiry.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.store.repos.RefreshTokens(s.store.db).DeleteExpired(ctx, s.now())
}

// --- helpers below ---

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	return email, nil
}

func (s *AuthService) getRandomSalt() []byte { return common.GenerateRandByteArray(cryptox.SaltSize) }

func (s *AuthService) generateAccessToken(userID, sessionID string) (string, error) {
	return auth.GenerateToken(userID, sessionID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *AuthService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *AuthService) generateTokenPair(ctx context.Context, userID, sessionID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID, sessionID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.store.repos.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, sessionID, refresh, s.refreshTokenValidityDuration); err != nil {
		s.log.Error(ctx, "failed to store refresh token", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenValidityDuration.Seconds()),
		SessionID:    sessionID,
	}, nil
}
