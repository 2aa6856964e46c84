package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// TaskService handles task and note operations on the client. Every
// mutation lands in local state first; the remote push is conditional
// and best-effort, so a push failure never surfaces past a log line.
type TaskService struct {
	state    *State
	remote   ports.RemoteStore
	conn     ports.Connectivity
	notifier ports.Notifier
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(state *State, remote ports.RemoteStore, conn ports.Connectivity, notifier ports.Notifier, logger *logger.Logger) *TaskService {
	return &TaskService{
		state:    state,
		remote:   remote,
		conn:     conn,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateTask creates a new task or note and orders it to the front.
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	task := entities.Task{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		Details:         req.Details,
		Date:            req.Date,
		Time:            req.Time,
		Completed:       false,
		ProjectID:       req.ProjectID,
		Tags:            req.Tags,
		Type:            req.Type,
		IsBigNote:       req.IsBigNote,
		ReminderMinutes: req.ReminderMinutes,
		CreatedAt:       time.Now().UnixMilli(),
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	err := s.state.MutateTasks(func(tasks []entities.Task) []entities.Task {
		return append([]entities.Task{task}, tasks...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}

	s.logger.Info("Task created", "task_id", task.ID, "type", task.Type)

	s.pushTasks(ctx, "create_task", []entities.Task{task})

	return &task, nil
}

// UpdateTask edits a task in place. The patched result is validated on
// a copy before anything touches the store, so a rejected edit leaves
// the persisted snapshot exactly as it was.
func (s *TaskService) UpdateTask(ctx context.Context, id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	var updated *entities.Task
	for _, t := range s.state.Tasks() {
		if t.ID != id {
			continue
		}
		applyTaskPatch(&t, req)
		copied := t
		updated = &copied
		break
	}
	if updated == nil {
		return nil, entities.ErrTaskNotFound
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	err := s.state.MutateTasks(func(tasks []entities.Task) []entities.Task {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i] = *updated
				break
			}
		}
		return tasks
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}

	s.pushTasks(ctx, "update_task", []entities.Task{*updated})

	return updated, nil
}

func applyTaskPatch(t *entities.Task, req ports.UpdateTaskRequest) {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Details != nil {
		t.Details = req.Details
	}
	if req.Date != nil {
		t.Date = req.Date
	}
	if req.Time != nil {
		t.Time = req.Time
	}
	if req.ProjectID != nil {
		t.ProjectID = req.ProjectID
	}
	if req.Tags != nil {
		t.Tags = req.Tags
	}
	if req.ReminderMinutes != nil {
		t.ReminderMinutes = req.ReminderMinutes
	}
}

// DeleteTask removes a task locally and remotely.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	found := false
	err := s.state.MutateTasks(func(tasks []entities.Task) []entities.Task {
		out := tasks[:0]
		for i := range tasks {
			if tasks[i].ID == id {
				found = true
				continue
			}
			out = append(out, tasks[i])
		}
		return out
	})
	if err != nil {
		return fmt.Errorf("failed to persist tasks: %w", err)
	}
	if !found {
		return entities.ErrTaskNotFound
	}

	s.logger.Info("Task deleted", "task_id", id)

	if s.canPush("delete_task") {
		if err := s.remote.DeleteTask(ctx, id); err != nil {
			syncFailures.WithLabelValues("delete_task").Inc()
			s.logger.LogSyncFailure("delete_task", err)
		}
	}

	return nil
}

// ToggleComplete flips the completed flag, pushing only the changed
// field remotely.
func (s *TaskService) ToggleComplete(ctx context.Context, id string) (*entities.Task, error) {
	var toggled *entities.Task

	err := s.state.MutateTasks(func(tasks []entities.Task) []entities.Task {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Completed = !tasks[i].Completed
				copied := tasks[i]
				toggled = &copied
				break
			}
		}
		return tasks
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist tasks: %w", err)
	}
	if toggled == nil {
		return nil, entities.ErrTaskNotFound
	}

	if toggled.Completed && s.notifier != nil {
		if err := s.notifier.Chime(); err != nil {
			s.logger.Debugw("Completion chime failed", "error", err)
		}
	}

	if s.canPush("toggle_complete") {
		patch := ports.TaskFieldPatch{Completed: &toggled.Completed}
		if err := s.remote.UpdateTaskFields(ctx, id, patch); err != nil {
			syncFailures.WithLabelValues("toggle_complete").Inc()
			s.logger.LogSyncFailure("toggle_complete", err)
		}
	}

	return toggled, nil
}

// AssignDate plans an unplanned task onto a date.
func (s *TaskService) AssignDate(ctx context.Context, id string, date string) (*entities.Task, error) {
	if _, err := time.Parse(entities.DateLayout, date); err != nil {
		return nil, entities.ErrInvalidDate
	}

	var assigned *entities.Task

	err := s.state.MutateTasks(func(tasks []entities.Task) []entities.Task {
		for i := range tasks {
			if tasks[i].ID == id {
				d := date
				tasks[i].Date = &d
				copied := tasks[i]
				assigned = &copied
				break
			}
		}
		return tasks
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist tasks: %w", err)
	}
	if assigned == nil {
		return nil, entities.ErrTaskNotFound
	}

	if s.canPush("assign_date") {
		patch := ports.TaskFieldPatch{Date: assigned.Date}
		if err := s.remote.UpdateTaskFields(ctx, id, patch); err != nil {
			syncFailures.WithLabelValues("assign_date").Inc()
			s.logger.LogSyncFailure("assign_date", err)
		}
	}

	return assigned, nil
}

// Tasks returns the current task collection.
func (s *TaskService) Tasks() []entities.Task {
	return s.state.Tasks()
}

// Search filters tasks by case-insensitive substring over title,
// description and details.
func (s *TaskService) Search(query string) []entities.Task {
	tasks := s.state.Tasks()
	if query == "" {
		return tasks
	}

	out := []entities.Task{}
	for i := range tasks {
		if tasks[i].Matches(query) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// Counts computes the timeline badge counters for a selected date.
func (s *TaskService) Counts(selectedDate string) ports.TimelineCounts {
	today := entities.LocalDateString(time.Now())
	counts := ports.TimelineCounts{}

	for _, t := range s.state.Tasks() {
		if t.Type == entities.ItemTypeNote {
			counts.Notes++
		}
		if t.IsUnplanned() {
			counts.Unplanned++
			continue
		}
		if !t.Completed && *t.Date > today {
			counts.Upcoming++
		}
		if !t.Completed && *t.Date == selectedDate {
			counts.Todo++
		}
	}

	return counts
}

func (s *TaskService) canPush(op string) bool {
	if s.state.Session() == nil {
		syncSkipped.WithLabelValues(op).Inc()
		s.logger.LogSyncSkipped(op, "signed_out")
		return false
	}
	if !s.conn.Online() {
		syncSkipped.WithLabelValues(op).Inc()
		s.logger.LogSyncSkipped(op, "offline")
		return false
	}
	return true
}

func (s *TaskService) pushTasks(ctx context.Context, op string, tasks []entities.Task) {
	if !s.canPush(op) {
		return
	}

	session := s.state.Session()
	syncPushes.WithLabelValues("tasks").Inc()
	if err := s.remote.PushTasks(ctx, session.UserID, tasks); err != nil {
		syncFailures.WithLabelValues(op).Inc()
		s.logger.LogSyncFailure(op, err)
	}
}
