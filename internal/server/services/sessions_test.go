package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_OpenGetClose(t *testing.T) {
	svc, _, _ := newTestSessions(t)

	sess := svc.Open("u1")
	require.NotEmpty(t, sess.ID())
	assert.Equal(t, "u1", sess.UserID())
	assert.Equal(t, 1, svc.Len())

	got, err := svc.Get(sess.ID(), "u1")
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = svc.Get(sess.ID(), "someone-else")
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	svc.Close(sess.ID())
	_, err = svc.Get(sess.ID(), "u1")
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	assert.Equal(t, 0, svc.Len())
}

func TestSessionService_OpenGivesDistinctSessions(t *testing.T) {
	svc, _, _ := newTestSessions(t)

	a := svc.Open("u1")
	b := svc.Open("u1")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, svc.Len())
}

func TestSessionService_Resume(t *testing.T) {
	svc, _, _ := newTestSessions(t)

	sess := svc.Open("u1")
	got, err := svc.Resume(sess.ID(), "u1")
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = svc.Resume(sess.ID(), "u2")
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	// unknown id is recreated fresh
	recreated, err := svc.Resume("lost-session", "u1")
	require.NoError(t, err)
	assert.Equal(t, "lost-session", recreated.ID())
	assert.False(t, recreated.Synced())
	assert.Equal(t, 2, svc.Len())
}

func TestSessionService_PruneIdle(t *testing.T) {
	svc, _, _ := newTestSessions(t)

	stale := svc.Open("u1")
	svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	fresh := svc.Open("u2")

	pruned := svc.PruneIdle(context.Background(), time.Hour)
	assert.Equal(t, 1, pruned)

	_, err := svc.Get(stale.ID(), "u1")
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	_, err = svc.Get(fresh.ID(), "u2")
	assert.NoError(t, err)
}

func TestSessionService_GetKeepsSessionAlive(t *testing.T) {
	svc, _, _ := newTestSessions(t)

	sess := svc.Open("u1")
	svc.now = func() time.Time { return testNow.Add(50 * time.Minute) }
	_, err := svc.Get(sess.ID(), "u1")
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(100 * time.Minute) }
	assert.Equal(t, 0, svc.PruneIdle(context.Background(), time.Hour))
}
