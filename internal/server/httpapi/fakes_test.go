package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/server/services"
	"github.com/dmitrijs2005/signify/internal/streak"
)

type fakeAccounts struct {
	registerOut *models.UserProfile
	registerErr error
	gotRegister services.RegisterInput

	loginOut *services.TokenPair
	loginErr error

	refreshOut *services.TokenPair
	refreshErr error

	logoutErr     error
	logoutSession string
	logoutToken   string
}

func (f *fakeAccounts) Register(_ context.Context, in services.RegisterInput) (*models.UserProfile, error) {
	f.gotRegister = in
	return f.registerOut, f.registerErr
}

func (f *fakeAccounts) Login(context.Context, string, string) (*services.TokenPair, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeAccounts) Refresh(context.Context, string) (*services.TokenPair, error) {
	return f.refreshOut, f.refreshErr
}

func (f *fakeAccounts) Logout(_ context.Context, sessionID, refreshToken string) error {
	f.logoutSession, f.logoutToken = sessionID, refreshToken
	return f.logoutErr
}

type fakeSession struct {
	snap         *services.Snapshot
	bootstrapErr error
	refreshErr   error
	opErr        error

	bootstraps int
	acks       int
	gotMode    string
	gotAttempt *models.PracticeAttempt
	gotProfile models.ProfileUpdate
}

func (f *fakeSession) ID() string     { return "sess-1" }
func (f *fakeSession) UserID() string { return "u1" }

func (f *fakeSession) Bootstrap(context.Context) (*services.Snapshot, error) {
	f.bootstraps++
	return f.snap, f.bootstrapErr
}

func (f *fakeSession) Snapshot() *services.Snapshot { return f.snap }

func (f *fakeSession) AcknowledgeStreakEvent() {
	f.acks++
	f.snap.StreakEvent = nil
}

func (f *fakeSession) RefreshProfile(context.Context) error { return f.refreshErr }

func (f *fakeSession) UpdateProfile(_ context.Context, upd models.ProfileUpdate) (*models.UserProfile, error) {
	f.gotProfile = upd
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.snap.Profile, nil
}

func (f *fakeSession) UpdateSettings(context.Context, models.SettingsUpdate) (*models.UserSettings, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.snap.Settings, nil
}

func (f *fakeSession) Overview(context.Context) (*models.DashboardOverview, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	return &models.DashboardOverview{Lessons: []models.DashboardLesson{}}, nil
}

func (f *fakeSession) PracticeHistory(_ context.Context, mode string) ([]models.PracticeSession, error) {
	f.gotMode = mode
	if f.opErr != nil {
		return nil, f.opErr
	}
	return []models.PracticeSession{}, nil
}

func (f *fakeSession) ScorePractice(ctx context.Context, scorer services.Scorer, a *models.PracticeAttempt) (*models.PracticeScore, error) {
	f.gotAttempt = a
	if f.opErr != nil {
		return nil, f.opErr
	}
	score, feedback, _ := scorer.Score(ctx, a)
	return &models.PracticeScore{SessionID: "ps-1", Score: score, Feedback: feedback}, nil
}

func (f *fakeSession) ChatSessions(context.Context) ([]models.ChatSession, error) {
	return []models.ChatSession{{ID: "c1"}}, f.opErr
}

type fakeLessons struct {
	gotTerm string
	err     error
}

func (f *fakeLessons) Search(_ context.Context, term string) ([]models.Lesson, error) {
	f.gotTerm = term
	if f.err != nil {
		return nil, f.err
	}
	return []models.Lesson{{ID: "l1", Title: "Greetings"}}, nil
}

type fakeReclaimer struct {
	out   *services.ReclaimResult
	err   error
	calls int
}

func (f *fakeReclaimer) Run(context.Context) (*services.ReclaimResult, error) {
	f.calls++
	return f.out, f.err
}

const validToken = "good-token"

type testEnv struct {
	server    *Server
	accounts  *fakeAccounts
	session   *fakeSession
	lessons   *fakeLessons
	reclaimer *fakeReclaimer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sess := &fakeSession{snap: &services.Snapshot{
		Profile:     &models.UserProfile{ID: "u1", Nickname: "ann", StreakCount: 3},
		Settings:    &models.UserSettings{UserID: "u1", AppTheme: models.ThemeLight},
		StreakEvent: &streak.Event{Previous: 2, Current: 3},
	}}
	env := &testEnv{
		accounts:  &fakeAccounts{},
		session:   sess,
		lessons:   &fakeLessons{},
		reclaimer: &fakeReclaimer{},
	}
	resolver := ResolverFunc(func(token string) (Session, error) {
		if token != validToken {
			return nil, common.ErrInvalidToken
		}
		return sess, nil
	})
	env.server = NewServer(":0", []string{"*"}, logging.Nop(), Deps{
		Accounts:  env.accounts,
		Sessions:  resolver,
		Lessons:   env.lessons,
		Reclaimer: env.reclaimer,
	})
	return env
}

func (e *testEnv) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doRequest(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
