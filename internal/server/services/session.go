package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/metrics"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/streak"
)

// Snapshot is the consumer-facing view of a session.
type Snapshot struct {
	Profile     *models.UserProfile  `json:"profile"`
	Settings    *models.UserSettings `json:"settings"`
	StreakEvent *streak.Event        `json:"streakEvent"`
}

// Session is the state of one authenticated login: who the user is, the
// cached profile and settings, the pending streak event and whether the
// activity sync already ran for the current page load. None of it is
// persisted.
type Session struct {
	id     string
	userID string
	store  store
	log    logging.Logger
	now    func() time.Time

	// serializes page loads of the same login
	boot sync.Mutex

	mu       sync.Mutex
	synced   bool
	profile  *models.UserProfile
	settings *models.UserSettings
	event    *streak.Event
	lastSeen time.Time
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

// Bootstrap establishes a page load: it clears the one-shot flag and any
// event left by the previous load, loads the profile and settings, and runs
// the activity sync. The returned error reports load failures only; sync
// failures are logged and never surface.
func (s *Session) Bootstrap(ctx context.Context) (*Snapshot, error) {
	s.boot.Lock()
	defer s.boot.Unlock()

	s.mu.Lock()
	s.synced = false
	s.event = nil
	s.mu.Unlock()

	loadErr := s.RefreshProfile(ctx)
	s.SyncActivity(ctx)
	return s.Snapshot(), loadErr
}

// SyncActivity applies the streak policy to the stored activity and writes
// last_active_at=now with the new streak in one update. It runs at most once
// per page load; later calls return nil without touching the store. The
// returned event is non-nil only when the streak grew.
func (s *Session) SyncActivity(ctx context.Context) *streak.Event {
	s.mu.Lock()
	if s.synced {
		s.mu.Unlock()
		return nil
	}
	s.synced = true
	s.mu.Unlock()

	var (
		previous int
		updated  *models.UserProfile
		outcome  string
	)

	err := s.store.asUser(ctx, s.userID, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.store.repos.Users(tx)

		activity, err := repo.GetActivity(ctx, s.userID)
		if err != nil {
			return fmt.Errorf("fetch activity: %w", err)
		}

		now := s.now()
		previous = activity.StreakCount
		next := streak.Next(activity.LastActiveAt, activity.StreakCount, now)
		outcome = syncOutcome(activity.LastActiveAt, previous, next)

		updated, err = repo.UpdateActivity(ctx, s.userID, now, next)
		if err != nil {
			return fmt.Errorf("update activity: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.StreakSyncsTotal.WithLabelValues(metrics.SyncFailed).Inc()
		s.log.Error(ctx, "activity sync failed", "user_id", s.userID, "error", err)
		return nil
	}

	metrics.StreakSyncsTotal.WithLabelValues(outcome).Inc()

	ev := streak.Evaluate(previous, updated.StreakCount)

	s.mu.Lock()
	s.profile = updated
	if ev != nil {
		s.event = ev
	}
	s.mu.Unlock()

	if ev != nil {
		metrics.StreakEventsTotal.Inc()
		s.log.Info(ctx, "streak increased", "user_id", s.userID, "previous", ev.Previous, "current", ev.Current)
		e := *ev
		return &e
	}
	return nil
}

func syncOutcome(lastActiveAt *time.Time, previous, next int) string {
	switch {
	case lastActiveAt == nil:
		return metrics.SyncFirst
	case next > previous:
		return metrics.SyncIncremented
	case next < previous:
		return metrics.SyncReset
	default:
		return metrics.SyncUnchanged
	}
}

// Synced reports whether the activity sync has been attempted.
func (s *Session) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Snapshot returns copies of the cached profile, settings and pending event.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Snapshot{
		Profile:     cloneProfile(s.profile),
		Settings:    cloneSettings(s.settings),
		StreakEvent: cloneEvent(s.event),
	}
}

func (s *Session) Profile() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProfile(s.profile)
}

func (s *Session) Settings() *models.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSettings(s.settings)
}

// StreakEvent returns the pending event, or nil.
func (s *Session) StreakEvent() *streak.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEvent(s.event)
}

// AcknowledgeStreakEvent discards the pending event. No-op when none.
func (s *Session) AcknowledgeStreakEvent() {
	s.mu.Lock()
	s.event = nil
	s.mu.Unlock()
}

// RefreshProfile reloads the profile and settings from the store. On error
// the cached values are cleared, matching what the store could not confirm.
func (s *Session) RefreshProfile(ctx context.Context) error {
	var (
		profile  *models.UserProfile
		settings *models.UserSettings
	)

	err := s.store.asUser(ctx, s.userID, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		profile, err = s.store.repos.Users(tx).GetProfile(ctx, s.userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		settings, err = s.store.repos.Settings(tx).Get(ctx, s.userID)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		return nil
	})

	s.mu.Lock()
	s.profile, s.settings = profile, settings
	s.mu.Unlock()

	if err != nil {
		s.log.Error(ctx, "failed to load profile", "user_id", s.userID, "error", err)
		return err
	}
	return nil
}

// UpdateProfile changes the editable profile fields. An empty update
// returns the cached profile unchanged.
func (s *Session) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error) {
	if upd.Nickname != nil {
		nick := strings.TrimSpace(*upd.Nickname)
		if nick == "" {
			return nil, fmt.Errorf("%w: nickname must not be empty", common.ErrorValidation)
		}
		upd.Nickname = &nick
	}
	if upd.IsEmpty() {
		return s.Profile(), nil
	}

	var updated *models.UserProfile
	err := s.store.asUser(ctx, s.userID, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		updated, err = s.store.repos.Users(tx).UpdateProfile(ctx, s.userID, upd)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profile = updated
	s.mu.Unlock()

	return cloneProfile(updated), nil
}

// UpdateSettings changes user settings. An empty update returns the cached
// settings unchanged.
func (s *Session) UpdateSettings(ctx context.Context, upd models.SettingsUpdate) (*models.UserSettings, error) {
	if err := validateSettings(upd); err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return s.Settings(), nil
	}

	var updated *models.UserSettings
	err := s.store.asUser(ctx, s.userID, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		updated, err = s.store.repos.Settings(tx).Update(ctx, s.userID, upd)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.settings = updated
	s.mu.Unlock()

	return cloneSettings(updated), nil
}

func validateSettings(upd models.SettingsUpdate) error {
	if upd.AppTheme != nil && *upd.AppTheme != models.ThemeLight && *upd.AppTheme != models.ThemeDark {
		return fmt.Errorf("%w: app_theme must be %q or %q", common.ErrorValidation, models.ThemeLight, models.ThemeDark)
	}
	if upd.TimeZone != nil && *upd.TimeZone != "" {
		if _, err := time.LoadLocation(*upd.TimeZone); err != nil {
			return fmt.Errorf("%w: unknown time_zone %q", common.ErrorValidation, *upd.TimeZone)
		}
	}
	if upd.Notifications != nil {
		var obj map[string]any
		if err := json.Unmarshal(*upd.Notifications, &obj); err != nil || obj == nil {
			return fmt.Errorf("%w: notifications must be a JSON object", common.ErrorValidation)
		}
	}
	return nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func cloneProfile(p *models.UserProfile) *models.UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneSettings(s *models.UserSettings) *models.UserSettings {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneEvent(e *streak.Event) *streak.Event {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
