package entities

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Common errors
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime     = errors.New("time must be HH:MM")
	ErrInvalidReminder = errors.New("reminder minutes must not be negative")
	ErrInvalidPIN      = errors.New("pin must be 4 or 6 digits")
	ErrUnauthorized    = errors.New("unauthorized")
)

// ItemType distinguishes schedulable tasks from notes. Notes carry the
// completed field too but it is never meaningful for them.
type ItemType string

const (
	ItemTypeTask ItemType = "task"
	ItemTypeNote ItemType = "note"
)

func (it ItemType) IsValid() bool {
	switch it {
	case ItemTypeTask, ItemTypeNote:
		return true
	default:
		return false
	}
}

// DateLayout is the local calendar date format used everywhere a task
// carries a date. It is a local date, not a UTC instant.
const DateLayout = "2006-01-02"

// TimeLayout is the 24-hour wall-clock format for task times.
const TimeLayout = "15:04"

// Task represents a schedulable to-do or a note. A nil Date means the
// item is unplanned, which is a first-class state distinct from any
// particular date.
type Task struct {
	ID              string   `json:"id" db:"id"`
	UserID          string   `json:"user_id,omitempty" db:"user_id"`
	Title           string   `json:"title" db:"title"`
	Description     *string  `json:"description,omitempty" db:"description"`
	Details         *string  `json:"details,omitempty" db:"details"`
	Date            *string  `json:"date" db:"date"`
	Time            *string  `json:"time,omitempty" db:"time"`
	Completed       bool     `json:"completed" db:"completed"`
	ProjectID       *string  `json:"projectId,omitempty" db:"project_id"`
	Tags            []string `json:"tags" db:"tags"`
	Type            ItemType `json:"type" db:"type"`
	IsBigNote       bool     `json:"isBigNote,omitempty" db:"is_big_note"`
	ReminderMinutes *int     `json:"reminderMinutes,omitempty" db:"reminder_minutes"`
	CreatedAt       int64    `json:"createdAt" db:"created_at"`
}

// Project is a named grouping with a color. The stored progress value is
// historical; consumers recompute it from child tasks via Progress.
type Project struct {
	ID       string `json:"id" db:"id"`
	UserID   string `json:"user_id,omitempty" db:"user_id"`
	Name     string `json:"name" db:"name"`
	Color    string `json:"color" db:"color"`
	Icon     string `json:"icon,omitempty" db:"icon"`
	Progress int    `json:"progress" db:"progress"`
}

// Profile is the single per-user record shown in the workspace view.
type Profile struct {
	Name   string  `json:"name" db:"name"`
	Email  string  `json:"email" db:"email"`
	Avatar *string `json:"avatar" db:"avatar"`
}

// DefaultProfile is the seed value used when no profile has been
// persisted yet or the persisted value is unreadable.
func DefaultProfile() Profile {
	return Profile{Name: "Member", Email: "", Avatar: nil}
}

// AppLockSettings controls the PIN lock over the app surface.
type AppLockSettings struct {
	Enabled        bool   `json:"enabled"`
	PIN            string `json:"pin,omitempty"`
	TimeoutMinutes int    `json:"timeoutMinutes"`
	LastUnlockedAt *int64 `json:"lastUnlockedAt"`
}

// Settings holds the scalar UI preferences persisted alongside the
// collections.
type Settings struct {
	DarkMode     bool            `json:"darkMode"`
	ReminderTone string          `json:"reminderTone"`
	AppLock      AppLockSettings `json:"appLock"`
}

// DefaultSettings mirrors the defaults of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		DarkMode:     false,
		ReminderTone: "louder",
		AppLock:      AppLockSettings{Enabled: false, TimeoutMinutes: 1},
	}
}

// User is the authenticated identity owning the remote copies of the
// collections.
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Business logic methods for Task

// Validate checks the fields a task must carry before it is persisted.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("invalid item type %q", t.Type)
	}
	if t.Date != nil {
		if _, err := time.Parse(DateLayout, *t.Date); err != nil {
			return ErrInvalidDate
		}
	}
	if t.Time != nil {
		if _, err := time.Parse(TimeLayout, *t.Time); err != nil {
			return ErrInvalidTime
		}
	}
	if t.ReminderMinutes != nil && *t.ReminderMinutes < 0 {
		return ErrInvalidReminder
	}
	return nil
}

// IsUnplanned reports whether the task has no assigned date.
func (t *Task) IsUnplanned() bool {
	return t.Date == nil || *t.Date == ""
}

// HasReminder reports whether the task can ever produce a reminder. A
// task with no date has no trigger instant and must never fire.
func (t *Task) HasReminder() bool {
	return !t.IsUnplanned() && t.Time != nil && t.ReminderMinutes != nil && !t.Completed
}

// TriggerMinutes returns the minute-of-day at which the reminder fires:
// the event time minus the lead time. The second return value is false
// when the task cannot fire at all.
func (t *Task) TriggerMinutes() (int, bool) {
	if !t.HasReminder() {
		return 0, false
	}
	parsed, err := time.Parse(TimeLayout, *t.Time)
	if err != nil {
		return 0, false
	}
	return parsed.Hour()*60 + parsed.Minute() - *t.ReminderMinutes, true
}

// Matches performs case-insensitive search over the searchable text of
// an item.
func (t *Task) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q) {
		return true
	}
	if t.Details != nil && strings.Contains(strings.ToLower(*t.Details), q) {
		return true
	}
	return false
}

// MinuteOfDay truncates a wall-clock instant to its minute-of-day.
func MinuteOfDay(now time.Time) int {
	return now.Hour()*60 + now.Minute()
}

// LocalDateString formats an instant as the local calendar date string
// tasks are keyed by.
func LocalDateString(now time.Time) string {
	return now.Format(DateLayout)
}

// Business logic methods for Project

// ComputeProgress derives the completion percentage of a project from
// its tasks: round(100 * completed / total), 0 with no tasks. The stored
// Progress field is only a historical snapshot of this value.
func (p *Project) ComputeProgress(tasks []Task) int {
	total := 0
	completed := 0
	for i := range tasks {
		if tasks[i].ProjectID == nil || *tasks[i].ProjectID != p.ID {
			continue
		}
		total++
		if tasks[i].Completed {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// Business logic methods for AppLockSettings

// ValidPIN reports whether a candidate PIN has an accepted shape.
func ValidPIN(pin string) bool {
	if len(pin) != 4 && len(pin) != 6 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ShouldLock reports whether re-entry requires the PIN again, given the
// current instant. A zero timeout means immediate re-lock.
func (a *AppLockSettings) ShouldLock(now time.Time) bool {
	if !a.Enabled || a.PIN == "" {
		return false
	}
	if a.LastUnlockedAt == nil {
		return true
	}
	elapsed := now.UnixMilli() - *a.LastUnlockedAt
	return elapsed >= int64(a.TimeoutMinutes)*60*1000
}

// Unlock records a successful PIN entry.
func (a *AppLockSettings) Unlock(now time.Time) {
	ts := now.UnixMilli()
	a.LastUnlockedAt = &ts
}
