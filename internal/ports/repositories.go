package ports

import (
	"context"
	"time"

	"github.com/taskito/core/internal/domain/entities"
)

// UserRepository defines the interface for user account operations on
// the sync backend.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository tracks issued sessions so that sign-out can revoke
// them server-side.
type SessionRepository interface {
	Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	CleanupExpired(ctx context.Context) error
}

// TaskRepository defines the table-oriented task operations exposed by
// the sync backend. Upsert is insert-or-replace keyed by task id.
type TaskRepository interface {
	Upsert(ctx context.Context, userID string, tasks []entities.Task) error
	ListByUser(ctx context.Context, userID string) ([]entities.Task, error)
	UpdateFields(ctx context.Context, userID, taskID string, fields TaskFieldPatch) error
	Delete(ctx context.Context, userID, taskID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// ProjectRepository defines the table-oriented project operations.
type ProjectRepository interface {
	Upsert(ctx context.Context, userID string, projects []entities.Project) error
	ListByUser(ctx context.Context, userID string) ([]entities.Project, error)
	Delete(ctx context.Context, userID, projectID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// ProfileRepository stores the single per-user profile record.
type ProfileRepository interface {
	Upsert(ctx context.Context, userID string, profile entities.Profile) error
	GetByUser(ctx context.Context, userID string) (*entities.Profile, error)
	DeleteForUser(ctx context.Context, userID string) error
}

// TaskFieldPatch carries the targeted partial updates the client issues
// for cheap single-field mutations; nil fields are left untouched.
type TaskFieldPatch struct {
	Completed *bool   `json:"completed,omitempty"`
	Date      *string `json:"date,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p TaskFieldPatch) IsEmpty() bool {
	return p.Completed == nil && p.Date == nil
}
