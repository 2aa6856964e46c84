package ports

import (
	"context"

	"github.com/taskito/core/internal/domain/entities"
)

// LocalStore is the durable key-value persistence layer of the client.
// Every save rewrites the full serialized collection for its key; loads
// of missing or corrupt values fail safe to the default value and never
// return an error for that case.
type LocalStore interface {
	LoadTasks() []entities.Task
	SaveTasks(tasks []entities.Task) error
	LoadProjects() []entities.Project
	SaveProjects(projects []entities.Project) error
	LoadProfile() entities.Profile
	SaveProfile(profile entities.Profile) error
	LoadSettings() entities.Settings
	SaveSettings(settings entities.Settings) error
	Clear() error
}

// RemoteSnapshot is the result of a pull-all from the remote store.
// Collections are non-nil whenever the remote returned them, even empty;
// a nil Profile means no profile row exists yet.
type RemoteSnapshot struct {
	Tasks    []entities.Task
	Projects []entities.Project
	Profile  *entities.Profile
}

// RemoteStore is the authenticated, table-oriented adapter over the sync
// backend. All pushes are bulk upserts keyed by entity id. Callers are
// responsible for the offline/unauthenticated no-op policy; the adapter
// itself reports errors.
type RemoteStore interface {
	PullAll(ctx context.Context, userID string) (*RemoteSnapshot, error)
	PushTasks(ctx context.Context, userID string, tasks []entities.Task) error
	PushProjects(ctx context.Context, userID string, projects []entities.Project) error
	PushProfile(ctx context.Context, userID string, profile entities.Profile) error
	UpdateTaskFields(ctx context.Context, taskID string, patch TaskFieldPatch) error
	DeleteTask(ctx context.Context, taskID string) error
	DeleteProject(ctx context.Context, projectID string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// Session is the client-side view of an authenticated identity.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// AuthState enumerates the auth-state change events the client observes.
type AuthState string

const (
	AuthStateSignedIn  AuthState = "signed_in"
	AuthStateSignedOut AuthState = "signed_out"
)

// AuthClient is the standard email/password authentication API of the
// sync backend.
type AuthClient interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	UpdatePassword(ctx context.Context, currentPassword, newPassword string) error
	Session(ctx context.Context) (*Session, error)
	OnAuthStateChange(fn func(state AuthState, session *Session))
}

// Connectivity reports whether a network path to the backend exists.
// Remote operations are silently skipped while offline.
type Connectivity interface {
	Online() bool
}

// Notifier is the reminder delivery surface. Every part of it is
// best-effort: a failing system notification or tone must not prevent
// the in-app popup.
type Notifier interface {
	ShowPopup(task entities.Task)
	ClearPopup()
	Notify(task entities.Task) error
	Chime() error
	StartTone(tone string) error
	StopTone()
	Vibrate(pattern []int)
	CancelVibration()
}
