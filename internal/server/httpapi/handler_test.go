package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/health", "", false)

	rec := env.do(http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signify_http_requests_total")
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.registerOut = &models.UserProfile{ID: "u1", Email: "a@example.com", Nickname: "a"}

	rec := env.do(http.MethodPost, "/v1/auth/register",
		`{"email":"a@example.com","password":"long enough","nickname":"a"}`, false)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "a@example.com", env.accounts.gotRegister.Email)
	assert.Contains(t, rec.Body.String(), `"streak_count":0`)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
		{name: "validation", body: `{}`, err: common.ErrorValidation, status: http.StatusBadRequest},
		{name: "taken", body: `{}`, err: common.ErrorAlreadyExists, status: http.StatusConflict},
		{name: "internal", body: `{}`, err: errors.New("db down"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.accounts.registerErr = tt.err

			rec := env.do(http.MethodPost, "/v1/auth/register", tt.body, false)
			assert.Equal(t, tt.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Message)
			assert.NotContains(t, body.Message, "db down")
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.loginOut = &services.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", ExpiresIn: 900, SessionID: "s"}

	rec := env.do(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"x"}`, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"access_token":"a","refresh_token":"r","token_type":"Bearer","expires_in":900}`, rec.Body.String())
}

func TestLogin_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.loginErr = common.ErrorUnauthorized

	rec := env.do(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"x"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_Expired(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.refreshErr = common.ErrRefreshTokenExpired

	rec := env.do(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"r"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"r"}`, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sess-1", env.accounts.logoutSession)
	assert.Equal(t, "r", env.accounts.logoutToken)

	rec = env.do(http.MethodPost, "/v1/auth/logout", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "", env.accounts.logoutToken)
}

func TestRequireSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/session", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := newRequest(http.MethodGet, "/v1/session")
	req.Header.Set("Authorization", "Bearer wrong")
	rec = env.doRequest(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = newRequest(http.MethodGet, "/v1/session")
	req.Header.Set("Authorization", "Basic "+validToken)
	rec = env.doRequest(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = newRequest(http.MethodGet, "/v1/session")
	req.Header.Set("Authorization", "bearer "+validToken)
	rec = env.doRequest(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBootstrap(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/session", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.session.bootstraps)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `{"previous":2,"current":3}`, string(body["streakEvent"]))
	assert.Contains(t, string(body["profile"]), `"streak_count":3`)
	assert.Contains(t, body, "settings")
}

func TestBootstrap_LoadError(t *testing.T) {
	env := newTestEnv(t)
	env.session.bootstrapErr = errors.New("load profile: db error")

	rec := env.do(http.MethodPost, "/v1/session", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAckStreakEvent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/session/streak-event/ack", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/v1/session", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"streakEvent":null`)

	rec = env.do(http.MethodPost, "/v1/session/streak-event/ack", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, env.session.acks)
}

func TestRefreshSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/v1/session/refresh", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.session.refreshErr = common.ErrorNotFound
	rec = env.do(http.MethodPost, "/v1/session/refresh", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPatch, "/v1/profile", `{"nickname":"annie"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.session.gotProfile.Nickname)
	assert.Equal(t, "annie", *env.session.gotProfile.Nickname)
	assert.Nil(t, env.session.gotProfile.FullName)

	env.session.opErr = common.ErrorValidation
	rec = env.do(http.MethodPatch, "/v1/profile", `{"nickname":""}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPatch, "/v1/settings", `{"app_theme":"dark"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPatch, "/v1/settings", `not json`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/dashboard", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalSessions":0`)
}

func TestLessons(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/lessons?q=gree", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gree", env.lessons.gotTerm)
	assert.Contains(t, rec.Body.String(), "Greetings")

	rec = env.do(http.MethodGet, "/v1/lessons", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPracticeSessions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/practice/sessions?mode=word", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "word", env.session.gotMode)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestScorePractice(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/practice/score",
		`{"mode":"word","frames":[{"timestamp_ms":0,"keypoints":[[0.1,0.2]]}]}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"session_id":"ps-1","score":73.5,"feedback":"Mock feedback: inference pipeline not yet wired."}`,
		rec.Body.String())
	require.NotNil(t, env.session.gotAttempt)
	assert.Len(t, env.session.gotAttempt.Frames, 1)
}

func TestChatSessions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/chat/sessions", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"c1"`)
}

func TestAPICORS(t *testing.T) {
	env := newTestEnv(t)

	req := newRequest(http.MethodOptions, "/v1/auth/login")
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := env.doRequest(req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrorValidation, http.StatusBadRequest},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{common.ErrSessionNotFound, http.StatusUnauthorized},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrorAlreadyExists, http.StatusConflict},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
