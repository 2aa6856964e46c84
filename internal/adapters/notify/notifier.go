package notify

import (
	"fmt"
	"os"
	"sync"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
)

// dueBody formats the notification body for a due task.
func dueBody(task entities.Task) string {
	t := ""
	if task.Time != nil {
		t = *task.Time
	}
	return fmt.Sprintf("%s - Due at %s", task.Title, t)
}

// Console delivers reminders to the terminal. The popup is a held
// in-memory banner, the system notification is a stderr line, and tone
// and vibration are tracked as state so dismissal can stop them. Every
// surface is independent; none blocks another.
type Console struct {
	logger *logger.Logger

	mu        sync.Mutex
	popup     *entities.Task
	tone      string
	vibrating bool
}

// NewConsole creates a terminal-backed notifier
func NewConsole(logger *logger.Logger) *Console {
	return &Console{logger: logger}
}

// ShowPopup raises the in-app reminder banner for the task.
func (n *Console) ShowPopup(task entities.Task) {
	n.mu.Lock()
	t := task
	n.popup = &t
	n.mu.Unlock()

	n.logger.Infow("Reminder popup shown", "task_id", task.ID, "title", task.Title)
}

// ClearPopup drops the banner.
func (n *Console) ClearPopup() {
	n.mu.Lock()
	n.popup = nil
	n.mu.Unlock()
}

// Popup returns the currently shown banner task, if any.
func (n *Console) Popup() *entities.Task {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.popup == nil {
		return nil
	}
	t := *n.popup
	return &t
}

// Notify emits a system-level notification for the task. The task id
// doubles as the notification tag so repeated fires replace rather
// than stack.
func (n *Console) Notify(task entities.Task) error {
	_, err := fmt.Fprintf(os.Stderr, "\a[reminder] %s (tag=%s)\n", dueBody(task), task.ID)
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// Chime plays the short completion sound.
func (n *Console) Chime() error {
	_, err := fmt.Fprint(os.Stderr, "\a")
	if err != nil {
		return fmt.Errorf("write chime: %w", err)
	}
	return nil
}

// StartTone begins the looping reminder tone. It keeps playing until
// StopTone is called.
func (n *Console) StartTone(tone string) error {
	n.mu.Lock()
	n.tone = tone
	n.mu.Unlock()

	n.logger.Debugw("Reminder tone started", "tone", tone)
	return nil
}

// StopTone stops the looping tone if one is playing.
func (n *Console) StopTone() {
	n.mu.Lock()
	playing := n.tone
	n.tone = ""
	n.mu.Unlock()

	if playing != "" {
		n.logger.Debugw("Reminder tone stopped", "tone", playing)
	}
}

// PlayingTone reports the currently looping tone, empty when silent.
func (n *Console) PlayingTone() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tone
}

// Vibrate starts the haptic pattern, alternating on/off durations in
// milliseconds.
func (n *Console) Vibrate(pattern []int) {
	n.mu.Lock()
	n.vibrating = len(pattern) > 0
	n.mu.Unlock()
}

// CancelVibration stops any running haptic pattern.
func (n *Console) CancelVibration() {
	n.mu.Lock()
	n.vibrating = false
	n.mu.Unlock()
}

// Vibrating reports whether a haptic pattern is active.
func (n *Console) Vibrating() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.vibrating
}
