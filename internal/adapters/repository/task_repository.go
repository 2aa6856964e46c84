package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

// Upsert inserts or fully replaces tasks keyed by id. This is the bulk
// push the client issues on create and on full re-sync; last write wins.
func (r *TaskRepositoryImpl) Upsert(ctx context.Context, userID string, tasks []entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, details, date, time, completed,
			project_id, tags, type, is_big_note, reminder_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			details = EXCLUDED.details,
			date = EXCLUDED.date,
			time = EXCLUDED.time,
			completed = EXCLUDED.completed,
			project_id = EXCLUDED.project_id,
			tags = EXCLUDED.tags,
			type = EXCLUDED.type,
			is_big_note = EXCLUDED.is_big_note,
			reminder_minutes = EXCLUDED.reminder_minutes
		WHERE tasks.user_id = EXCLUDED.user_id`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tasks: %w", err)
	}
	defer tx.Rollback()

	for i := range tasks {
		t := tasks[i]
		_, err := tx.ExecContext(ctx, query,
			t.ID, userID, t.Title, t.Description, t.Details, t.Date, t.Time, t.Completed,
			t.ProjectID, pq.Array(t.Tags), t.Type, t.IsBigNote, t.ReminderMinutes, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tasks: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]entities.Task, error) {
	query := `
		SELECT id, user_id, title, description, details, date, time, completed,
			project_id, tags, type, is_big_note, reminder_minutes, created_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []entities.Task{}
	for rows.Next() {
		var t entities.Task
		var tags pq.StringArray
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Details, &t.Date, &t.Time,
			&t.Completed, &t.ProjectID, &tags, &t.Type, &t.IsBigNote,
			&t.ReminderMinutes, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Tags = []string(tags)
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// UpdateFields applies a targeted partial update, the cheap path for
// toggling completion or assigning a date to an unplanned task.
func (r *TaskRepositoryImpl) UpdateFields(ctx context.Context, userID, taskID string, fields ports.TaskFieldPatch) error {
	if fields.IsEmpty() {
		return nil
	}

	sets := []string{}
	args := []interface{}{taskID, userID}
	idx := 3

	if fields.Completed != nil {
		sets = append(sets, fmt.Sprintf("completed = $%d", idx))
		args = append(args, *fields.Completed)
		idx++
	}
	if fields.Date != nil {
		sets = append(sets, fmt.Sprintf("date = $%d", idx))
		args = append(args, *fields.Date)
		idx++
	}

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $1 AND user_id = $2`, strings.Join(sets, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task fields: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, userID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user tasks: %w", err)
	}
	return nil
}
