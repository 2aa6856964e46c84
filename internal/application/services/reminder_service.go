package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// ReminderScanner walks the in-memory tasks once per second and fires
// each due reminder exactly once per (task, trigger minute, date) within
// the process lifetime. Matching is exact-minute: a trigger minute that
// passed while the process was down is never fired retroactively.
type ReminderScanner struct {
	state    *State
	notifier ports.Notifier
	logger   *logger.Logger
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	fired  map[string]struct{}
	active *entities.Task
}

// NewReminderScanner creates a new reminder scanner
func NewReminderScanner(state *State, notifier ports.Notifier, interval time.Duration, logger *logger.Logger) *ReminderScanner {
	if interval <= 0 {
		interval = time.Second
	}
	return &ReminderScanner{
		state:    state,
		notifier: notifier,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		fired:    make(map[string]struct{}),
	}
}

// Run drives the scan on a fixed-interval timer until the context is
// cancelled.
func (s *ReminderScanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			s.Scan(entities.LocalDateString(now), entities.MinuteOfDay(now))
		}
	}
}

// Scan checks every task against the given wall-clock minute. Exposed
// separately from Run so the check is driveable without a timer.
func (s *ReminderScanner) Scan(nowDate string, nowMinutes int) {
	for _, task := range s.state.Tasks() {
		trigger, ok := task.TriggerMinutes()
		if !ok {
			continue
		}
		if *task.Date != nowDate || nowMinutes != trigger {
			continue
		}

		key := firedKey(task.ID, trigger, nowDate)

		s.mu.Lock()
		if _, seen := s.fired[key]; seen {
			s.mu.Unlock()
			continue
		}
		s.fired[key] = struct{}{}
		s.mu.Unlock()

		s.trigger(task)
	}
}

// trigger delivers one reminder event. Every channel past the in-app
// popup is best-effort.
func (s *ReminderScanner) trigger(task entities.Task) {
	remindersFired.Inc()
	s.logger.Info("Reminder fired", "task_id", task.ID, "title", task.Title)

	s.mu.Lock()
	s.active = &task
	s.mu.Unlock()

	s.notifier.ShowPopup(task)

	if err := s.notifier.Notify(task); err != nil {
		s.logger.Debugw("System notification failed", "task_id", task.ID, "error", err)
	}

	tone := s.state.Settings().ReminderTone
	if err := s.notifier.StartTone(tone); err != nil {
		s.logger.Debugw("Alert tone failed", "task_id", task.ID, "error", err)
	}

	s.notifier.Vibrate([]int{800, 200, 800, 200, 800, 200, 800})
}

// Dismiss stops the audible and haptic alert and clears the popup. The
// fired key stays: the reminder does not re-trigger within the minute
// or the session.
func (s *ReminderScanner) Dismiss() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()

	s.notifier.StopTone()
	s.notifier.CancelVibration()
	s.notifier.ClearPopup()
}

// ActiveReminder returns the task of the currently shown popup, nil
// when none is active.
func (s *ReminderScanner) ActiveReminder() *entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	copied := *s.active
	return &copied
}

func firedKey(taskID string, triggerMinutes int, date string) string {
	return fmt.Sprintf("%s-%d-%s", taskID, triggerMinutes, date)
}
