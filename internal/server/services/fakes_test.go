package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/server/repositories/chats"
	"github.com/dmitrijs2005/signify/internal/server/repositories/lessons"
	"github.com/dmitrijs2005/signify/internal/server/repositories/practice"
	"github.com/dmitrijs2005/signify/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/signify/internal/server/repositories/settings"
	"github.com/dmitrijs2005/signify/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// expectUserTx expects one user-scoped transaction that commits.
func expectUserTx(mock sqlmock.Sqlmock, userID string) {
	mock.ExpectBegin()
	mock.ExpectExec("set_config").WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

// expectFailedUserTx expects one user-scoped transaction that rolls back.
func expectFailedUserTx(mock sqlmock.Sqlmock, userID string) {
	mock.ExpectBegin()
	mock.ExpectExec("set_config").WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrStr(s string) *string        { return &s }
func ptrFloat(f float64) *float64    { return &f }

// --- users ---

type fakeUser struct {
	user         models.User
	nickname     string
	fullName     *string
	lastActiveAt *time.Time
	streakCount  int
}

type fakeUsersRepo struct {
	mu    sync.Mutex
	users map[string]*fakeUser

	createErr   error
	emailErr    error
	activityErr error
	updateErr   error
	profileErr  error
	resetErr    error

	activityUpdates int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: make(map[string]*fakeUser)}
}

func (f *fakeUsersRepo) add(id string, lastActiveAt *time.Time, streakCount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &fakeUser{
		user:         models.User{ID: id, Email: id + "@example.com"},
		nickname:     id,
		lastActiveAt: lastActiveAt,
		streakCount:  streakCount,
	}
}

func (f *fakeUsersRepo) streak(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].streakCount
}

func (f *fakeUsersRepo) profile(u *fakeUser) *models.UserProfile {
	var last *time.Time
	if u.lastActiveAt != nil {
		last = ptrTime(*u.lastActiveAt)
	}
	return &models.UserProfile{
		ID:           u.user.ID,
		Email:        u.user.Email,
		FullName:     u.fullName,
		Nickname:     u.nickname,
		StreakCount:  u.streakCount,
		LastActiveAt: last,
	}
}

func (f *fakeUsersRepo) Create(_ context.Context, nu *models.NewUser) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.user.Email == nu.Email {
			return "", common.ErrorAlreadyExists
		}
	}
	id := "user-" + nu.Nickname
	f.users[id] = &fakeUser{
		user:     models.User{ID: id, Email: nu.Email, Salt: nu.Salt, PasswordHash: nu.PasswordHash},
		nickname: nu.Nickname,
		fullName: nu.FullName,
	}
	return id, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.user.Email == email {
			c := u.user
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f.profile(u), nil
}

func (f *fakeUsersRepo) GetActivity(_ context.Context, userID string) (*models.Activity, error) {
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Activity{LastActiveAt: u.lastActiveAt, StreakCount: u.streakCount}, nil
}

func (f *fakeUsersRepo) UpdateActivity(_ context.Context, userID string, lastActiveAt time.Time, streakCount int) (*models.UserProfile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	f.activityUpdates++
	u.lastActiveAt = ptrTime(lastActiveAt)
	u.streakCount = streakCount
	return f.profile(u), nil
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, userID string, upd models.ProfileUpdate) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Nickname != nil {
		u.nickname = *upd.Nickname
	}
	if upd.FullName != nil {
		u.fullName = upd.FullName
	}
	return f.profile(u), nil
}

func (f *fakeUsersRepo) ResetLapsedStreaks(_ context.Context, cutoff time.Time) ([]string, error) {
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0)
	for id, u := range f.users {
		if u.lastActiveAt != nil && u.lastActiveAt.Before(cutoff) && u.streakCount > 0 {
			u.streakCount = 0
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// --- settings ---

type fakeSettingsRepo struct {
	byUser    map[string]*models.UserSettings
	createErr error
	getErr    error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{byUser: make(map[string]*models.UserSettings)}
}

func (f *fakeSettingsRepo) Create(_ context.Context, userID string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byUser[userID] = &models.UserSettings{
		UserID:        userID,
		AppTheme:      models.ThemeLight,
		Notifications: json.RawMessage(`{}`),
	}
	return nil
}

func (f *fakeSettingsRepo) Get(_ context.Context, userID string) (*models.UserSettings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.byUser[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	return &c, nil
}

func (f *fakeSettingsRepo) Update(_ context.Context, userID string, upd models.SettingsUpdate) (*models.UserSettings, error) {
	s, ok := f.byUser[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.AppTheme != nil {
		s.AppTheme = *upd.AppTheme
	}
	if upd.PrefersAssistiveLearning != nil {
		s.PrefersAssistiveLearning = *upd.PrefersAssistiveLearning
	}
	if upd.TimeZone != nil {
		s.TimeZone = upd.TimeZone
	}
	if upd.Notifications != nil {
		s.Notifications = *upd.Notifications
	}
	c := *s
	return &c, nil
}

// --- lessons, practice, chats ---

type fakeLessonsRepo struct {
	out       []models.Lesson
	err       error
	gotTerm   string
	gotLimit  int
	callCount int
}

func (f *fakeLessonsRepo) Search(_ context.Context, term string, limit int) ([]models.Lesson, error) {
	f.callCount++
	f.gotTerm, f.gotLimit = term, limit
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Lesson, len(f.out))
	copy(out, f.out)
	return out, nil
}

type dailyCall struct {
	userID string
	day    time.Time
	score  float64
}

type fakePracticeRepo struct {
	sessions []models.PracticeSession
	daily    []models.PracticeMetricDaily

	listErr   error
	createErr error
	dailyErr  error

	gotMode   string
	gotLimit  int
	created   []models.PracticeSession
	dailyRecs []dailyCall
}

func (f *fakePracticeRepo) ListCompleted(_ context.Context, _ string, mode string, limit int) ([]models.PracticeSession, error) {
	f.gotMode, f.gotLimit = mode, limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sessions, nil
}

func (f *fakePracticeRepo) Create(_ context.Context, s *models.PracticeSession) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, *s)
	return "ps-1", nil
}

func (f *fakePracticeRepo) RecordDailyMetric(_ context.Context, userID string, day time.Time, score float64) error {
	if f.dailyErr != nil {
		return f.dailyErr
	}
	f.dailyRecs = append(f.dailyRecs, dailyCall{userID: userID, day: day, score: score})
	return nil
}

func (f *fakePracticeRepo) ListDailyMetrics(_ context.Context, _ string, limit int) ([]models.PracticeMetricDaily, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.daily, nil
}

type fakeChatsRepo struct {
	out      []models.ChatSession
	err      error
	gotLimit int
}

func (f *fakeChatsRepo) ListRecent(_ context.Context, _ string, limit int) ([]models.ChatSession, error) {
	f.gotLimit = limit
	return f.out, f.err
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	tokens map[string]*models.RefreshToken

	findErr   error
	takeErr   error
	delErr    error
	createErr error

	purged int64
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, sessionID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{
		Token:     token,
		UserID:    userID,
		SessionID: sessionID,
		Expires:   time.Now().Add(validity),
	}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeRefreshRepo) Take(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.takeErr != nil {
		return nil, f.takeErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.tokens, token)
	return t, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return f.purged, nil
}

// --- manager ---

type fakeRepoManager struct {
	users    *fakeUsersRepo
	settings *fakeSettingsRepo
	lessons  *fakeLessonsRepo
	practice *fakePracticeRepo
	chats    *fakeChatsRepo
	refresh  *fakeRefreshRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    newFakeUsersRepo(),
		settings: newFakeSettingsRepo(),
		lessons:  &fakeLessonsRepo{},
		practice: &fakePracticeRepo{},
		chats:    &fakeChatsRepo{},
		refresh:  newFakeRefreshRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) Settings(dbx.DBTX) settings.Repository           { return m.settings }
func (m *fakeRepoManager) Lessons(dbx.DBTX) lessons.Repository             { return m.lessons }
func (m *fakeRepoManager) Practice(dbx.DBTX) practice.Repository           { return m.practice }
func (m *fakeRepoManager) Chats(dbx.DBTX) chats.Repository                 { return m.chats }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
