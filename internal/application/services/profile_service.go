package services

import (
	"context"
	"fmt"
	"time"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// ProfileService handles the profile record, UI preferences and the
// app lock.
type ProfileService struct {
	state  *State
	remote ports.RemoteStore
	conn   ports.Connectivity
	logger *logger.Logger
	now    func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(state *State, remote ports.RemoteStore, conn ports.Connectivity, logger *logger.Logger) *ProfileService {
	return &ProfileService{
		state:  state,
		remote: remote,
		conn:   conn,
		logger: logger,
		now:    time.Now,
	}
}

// UpdateProfile edits the mutable profile fields. Email stays bound to
// the auth identity and cannot be changed here.
func (s *ProfileService) UpdateProfile(ctx context.Context, req ports.UpdateProfileRequest) (*entities.Profile, error) {
	profile := s.state.Profile()
	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Avatar != nil {
		profile.Avatar = req.Avatar
	}

	if err := s.state.SetProfile(profile); err != nil {
		return nil, fmt.Errorf("failed to persist profile: %w", err)
	}

	if session := s.state.Session(); session != nil && s.conn.Online() {
		syncPushes.WithLabelValues("profile").Inc()
		if err := s.remote.PushProfile(ctx, session.UserID, profile); err != nil {
			syncFailures.WithLabelValues("push_profile").Inc()
			s.logger.LogSyncFailure("push_profile", err)
		}
	} else {
		syncSkipped.WithLabelValues("push_profile").Inc()
		s.logger.LogSyncSkipped("push_profile", "offline_or_signed_out")
	}

	return &profile, nil
}

// Profile returns the current profile.
func (s *ProfileService) Profile() entities.Profile {
	return s.state.Profile()
}

// SetDarkMode persists the dark mode preference.
func (s *ProfileService) SetDarkMode(enabled bool) error {
	return s.state.MutateSettings(func(settings *entities.Settings) {
		settings.DarkMode = enabled
	})
}

// SetReminderTone persists the reminder tone preference.
func (s *ProfileService) SetReminderTone(tone string) error {
	return s.state.MutateSettings(func(settings *entities.Settings) {
		settings.ReminderTone = tone
	})
}

// EnableAppLock turns on the PIN lock. The PIN must be 4 or 6 digits.
func (s *ProfileService) EnableAppLock(pin string, timeoutMinutes int) error {
	if !entities.ValidPIN(pin) {
		return entities.ErrInvalidPIN
	}
	if timeoutMinutes < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	return s.state.MutateSettings(func(settings *entities.Settings) {
		ts := s.now().UnixMilli()
		settings.AppLock = entities.AppLockSettings{
			Enabled:        true,
			PIN:            pin,
			TimeoutMinutes: timeoutMinutes,
			LastUnlockedAt: &ts,
		}
	})
}

// DisableAppLock turns the PIN lock off and forgets the PIN.
func (s *ProfileService) DisableAppLock() error {
	return s.state.MutateSettings(func(settings *entities.Settings) {
		settings.AppLock = entities.AppLockSettings{Enabled: false, TimeoutMinutes: settings.AppLock.TimeoutMinutes}
	})
}

// UnlockWithPIN verifies the PIN and records the unlock time on success.
func (s *ProfileService) UnlockWithPIN(pin string) bool {
	ok := false
	_ = s.state.MutateSettings(func(settings *entities.Settings) {
		if settings.AppLock.Enabled && settings.AppLock.PIN == pin {
			settings.AppLock.Unlock(s.now())
			ok = true
		}
	})
	return ok
}

// IsLocked reports whether the app surface requires the PIN right now.
func (s *ProfileService) IsLocked() bool {
	lock := s.state.Settings().AppLock
	return lock.ShouldLock(s.now())
}
