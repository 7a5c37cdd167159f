// Package httpapi exposes the server's services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// Accounts is the unauthenticated part of the auth service.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.UserProfile, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, sessionID, refreshToken string) error
}

// Session is what authenticated handlers can do on behalf of a user.
// *services.Session implements it.
type Session interface {
	ID() string
	UserID() string
	Bootstrap(ctx context.Context) (*services.Snapshot, error)
	Snapshot() *services.Snapshot
	AcknowledgeStreakEvent()
	RefreshProfile(ctx context.Context) error
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error)
	UpdateSettings(ctx context.Context, upd models.SettingsUpdate) (*models.UserSettings, error)
	Overview(ctx context.Context) (*models.DashboardOverview, error)
	PracticeHistory(ctx context.Context, mode string) ([]models.PracticeSession, error)
	ScorePractice(ctx context.Context, scorer services.Scorer, attempt *models.PracticeAttempt) (*models.PracticeScore, error)
	ChatSessions(ctx context.Context) ([]models.ChatSession, error)
}

var _ Session = (*services.Session)(nil)

// SessionResolver maps an access token to its live session.
type SessionResolver interface {
	Resolve(accessToken string) (Session, error)
}

// ResolverFunc adapts a function to SessionResolver.
type ResolverFunc func(accessToken string) (Session, error)

func (f ResolverFunc) Resolve(accessToken string) (Session, error) { return f(accessToken) }

// SessionsFrom resolves sessions through the auth service.
func SessionsFrom(a *services.AuthService) ResolverFunc {
	return func(accessToken string) (Session, error) {
		sess, err := a.Authenticate(accessToken)
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

type Lessons interface {
	Search(ctx context.Context, term string) ([]models.Lesson, error)
}

type Reclaimer interface {
	Run(ctx context.Context) (*services.ReclaimResult, error)
}

// Deps are the services the API is built on.
type Deps struct {
	Accounts  Accounts
	Sessions  SessionResolver
	Lessons   Lessons
	Reclaimer Reclaimer
	Scorer    services.Scorer
}

type Server struct {
	address     string
	corsOrigins []string
	logger      logging.Logger
	deps        Deps
}

func NewServer(address string, corsOrigins []string, l logging.Logger, d Deps) *Server {
	if d.Scorer == nil {
		d.Scorer = services.MockScorer{}
	}
	return &Server{
		address:     address,
		corsOrigins: corsOrigins,
		logger:      l.With("module", "http_server"),
		deps:        d,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
