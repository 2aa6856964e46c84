package services

import (
	"context"

	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// SyncManager drives local/remote reconciliation. The policy is
// deliberately blunt: remote wins on sign-in, local wins on explicit
// edit, and regaining connectivity re-pushes everything. There is no
// queue, retry or conflict detection; the last full push wins.
type SyncManager struct {
	state  *State
	remote ports.RemoteStore
	conn   ports.Connectivity
	logger *logger.Logger
}

// NewSyncManager creates a new sync manager
func NewSyncManager(state *State, remote ports.RemoteStore, conn ports.Connectivity, logger *logger.Logger) *SyncManager {
	return &SyncManager{
		state:  state,
		remote: remote,
		conn:   conn,
		logger: logger,
	}
}

// HandleSignIn records the session and pulls everything from remote.
// Returned collections fully replace local state, even when empty; the
// profile merges field-by-field. A failed pull leaves the local copy in
// place for the session.
func (m *SyncManager) HandleSignIn(ctx context.Context, session *ports.Session) error {
	m.state.SetSession(session)

	if !m.conn.Online() {
		syncSkipped.WithLabelValues("pull_all").Inc()
		m.logger.LogSyncSkipped("pull_all", "offline")
		return nil
	}

	snap, err := m.remote.PullAll(ctx, session.UserID)
	if err != nil {
		syncFailures.WithLabelValues("pull_all").Inc()
		m.logger.LogSyncFailure("pull_all", err)
		return nil
	}

	if err := m.state.ReplaceFromRemote(snap); err != nil {
		return err
	}

	m.logger.Info("Remote state loaded",
		"user_id", session.UserID,
		"tasks", len(snap.Tasks),
		"projects", len(snap.Projects),
	)
	return nil
}

// HandleSignOut clears all local persisted state. Remote data is left
// untouched.
func (m *SyncManager) HandleSignOut(ctx context.Context) error {
	if err := m.state.Clear(); err != nil {
		return err
	}
	m.logger.Info("Local state cleared on sign-out")
	return nil
}

// HandleOnline runs when connectivity returns: an unconditional,
// idempotent full re-push if a session exists.
func (m *SyncManager) HandleOnline(ctx context.Context) {
	if m.state.Session() == nil {
		syncSkipped.WithLabelValues("full_push").Inc()
		m.logger.LogSyncSkipped("full_push", "signed_out")
		return
	}
	m.PushAll(ctx)
}

// PushAll pushes the full tasks, projects and profile collections.
// Each push is independent and best-effort.
func (m *SyncManager) PushAll(ctx context.Context) {
	session := m.state.Session()
	if session == nil || !m.conn.Online() {
		syncSkipped.WithLabelValues("full_push").Inc()
		m.logger.LogSyncSkipped("full_push", "offline_or_signed_out")
		return
	}

	if tasks := m.state.Tasks(); len(tasks) > 0 {
		syncPushes.WithLabelValues("tasks").Inc()
		if err := m.remote.PushTasks(ctx, session.UserID, tasks); err != nil {
			syncFailures.WithLabelValues("push_tasks").Inc()
			m.logger.LogSyncFailure("push_tasks", err)
		}
	}

	if projects := m.state.Projects(); len(projects) > 0 {
		syncPushes.WithLabelValues("projects").Inc()
		if err := m.remote.PushProjects(ctx, session.UserID, projects); err != nil {
			syncFailures.WithLabelValues("push_projects").Inc()
			m.logger.LogSyncFailure("push_projects", err)
		}
	}

	syncPushes.WithLabelValues("profile").Inc()
	if err := m.remote.PushProfile(ctx, session.UserID, m.state.Profile()); err != nil {
		syncFailures.WithLabelValues("push_profile").Inc()
		m.logger.LogSyncFailure("push_profile", err)
	}
}
