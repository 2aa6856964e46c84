package ports

import (
	"context"

	"github.com/taskito/core/internal/domain/entities"
)

// AuthService interface for server-side authentication operations
type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error)
	SignOut(ctx context.Context, token string) error
	UpdatePassword(ctx context.Context, userID string, req UpdatePasswordRequest) error
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// TaskService interface for client-side task operations. Every mutation
// updates local state first and pushes to the remote store only when a
// session exists and the network is up.
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ToggleComplete(ctx context.Context, id string) (*entities.Task, error)
	AssignDate(ctx context.Context, id string, date string) (*entities.Task, error)
	Tasks() []entities.Task
	Search(query string) []entities.Task
	Counts(selectedDate string) TimelineCounts
}

// ProjectService interface for client-side project operations
type ProjectService interface {
	CreateProject(ctx context.Context, req CreateProjectRequest) (*entities.Project, error)
	UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (*entities.Project, error)
	DeleteProject(ctx context.Context, id string) error
	Reorder(ctx context.Context, orderedIDs []string) error
	Projects() []entities.Project
	ProjectProgress(id string) (int, error)
}

// ProfileService interface for profile and preference operations
type ProfileService interface {
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*entities.Profile, error)
	Profile() entities.Profile
	SetDarkMode(enabled bool) error
	SetReminderTone(tone string) error
	EnableAppLock(pin string, timeoutMinutes int) error
	DisableAppLock() error
	UnlockWithPIN(pin string) bool
	IsLocked() bool
}

// SyncService drives local/remote reconciliation. Remote failures in
// these paths are swallowed after logging; local state stays
// authoritative for the session.
type SyncService interface {
	HandleSignIn(ctx context.Context, session *Session) error
	HandleSignOut(ctx context.Context) error
	HandleOnline(ctx context.Context)
	PushAll(ctx context.Context)
}

// ReminderService is the per-second scanner over the in-memory tasks.
type ReminderService interface {
	Run(ctx context.Context)
	Scan(nowDate string, nowMinutes int)
	Dismiss()
	ActiveReminder() *entities.Task
}

// Request/Response Types

// Auth related types
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Task related types
type CreateTaskRequest struct {
	Title           string            `json:"title" validate:"required"`
	Description     *string           `json:"description"`
	Details         *string           `json:"details"`
	Date            *string           `json:"date"`
	Time            *string           `json:"time"`
	ProjectID       *string           `json:"projectId"`
	Tags            []string          `json:"tags"`
	Type            entities.ItemType `json:"type" validate:"required"`
	IsBigNote       bool              `json:"isBigNote"`
	ReminderMinutes *int              `json:"reminderMinutes"`
}

type UpdateTaskRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Details         *string  `json:"details"`
	Date            *string  `json:"date"`
	Time            *string  `json:"time"`
	ProjectID       *string  `json:"projectId"`
	Tags            []string `json:"tags"`
	ReminderMinutes *int     `json:"reminderMinutes"`
}

// TimelineCounts are the badge counters of the timeline view.
type TimelineCounts struct {
	Todo      int `json:"todo"`
	Upcoming  int `json:"upcoming"`
	Unplanned int `json:"unplanned"`
	Notes     int `json:"notes"`
}

// Project related types
type CreateProjectRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"required"`
	Icon  string `json:"icon"`
}

type UpdateProjectRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

// Profile related types
type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=100"`
	Avatar *string `json:"avatar"`
}

// Sync payloads exchanged with the backend
type SyncSnapshotResponse struct {
	Tasks    []entities.Task    `json:"tasks"`
	Projects []entities.Project `json:"projects"`
	Profile  *entities.Profile  `json:"profile"`
}

type PushTasksRequest struct {
	Tasks []entities.Task `json:"tasks" validate:"required,dive"`
}

type PushProjectsRequest struct {
	Projects []entities.Project `json:"projects" validate:"required,dive"`
}
