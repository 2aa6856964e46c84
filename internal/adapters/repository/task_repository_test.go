package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/ports"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestTaskUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	tasks := []entities.Task{
		{
			ID:    "t1",
			Title: "Write report",
			Type:  entities.ItemTypeTask,
			Date:  strPtr("2026-09-01"),
			Tags:  []string{"work"},
		},
		{
			ID:    "n1",
			Title: "Ideas",
			Type:  entities.ItemTypeNote,
			Tags:  []string{},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tasks .* ON CONFLICT \(id\) DO UPDATE SET`).
		WithArgs("t1", "u1", "Write report", nil, nil, "2026-09-01", nil, false,
			nil, sqlmock.AnyArg(), "task", false, nil, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO tasks .* ON CONFLICT \(id\) DO UPDATE SET`).
		WithArgs("n1", "u1", "Ideas", nil, nil, nil, nil, false,
			nil, sqlmock.AnyArg(), "note", false, nil, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), "u1", tasks))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskUpsertEmptyIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	require.NoError(t, repo.Upsert(context.Background(), "u1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	columns := []string{"id", "user_id", "title", "description", "details", "date", "time",
		"completed", "project_id", "tags", "type", "is_big_note", "reminder_minutes", "created_at"}

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("t1", "u1", "Write report", nil, nil, "2026-09-01", "14:00",
				false, nil, "{work,urgent}", "task", false, 15, int64(1756713600000)).
			AddRow("n1", "u1", "Ideas", "scratch", nil, nil, nil,
				false, nil, "{}", "note", true, nil, int64(1756627200000)))

	tasks, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, []string{"work", "urgent"}, tasks[0].Tags)
	require.NotNil(t, tasks[0].ReminderMinutes)
	assert.Equal(t, 15, *tasks[0].ReminderMinutes)

	assert.Equal(t, entities.ItemTypeNote, tasks[1].Type)
	assert.True(t, tasks[1].IsBigNote)
	assert.Empty(t, tasks[1].Tags)
	assert.Nil(t, tasks[1].Date)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskUpdateFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	t.Run("CompletedOnly", func(t *testing.T) {
		mock.ExpectExec(`UPDATE tasks SET completed = \$3 WHERE id = \$1 AND user_id = \$2`).
			WithArgs("t1", "u1", true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateFields(context.Background(), "u1", "t1", ports.TaskFieldPatch{Completed: boolPtr(true)})
		require.NoError(t, err)
	})

	t.Run("CompletedAndDate", func(t *testing.T) {
		mock.ExpectExec(`UPDATE tasks SET completed = \$3, date = \$4 WHERE id = \$1 AND user_id = \$2`).
			WithArgs("t1", "u1", false, "2026-09-05").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateFields(context.Background(), "u1", "t1", ports.TaskFieldPatch{
			Completed: boolPtr(false),
			Date:      strPtr("2026-09-05"),
		})
		require.NoError(t, err)
	})

	t.Run("NoRowsIsNotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE tasks SET completed = \$3`).
			WithArgs("missing", "u1", true).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateFields(context.Background(), "u1", "missing", ports.TaskFieldPatch{Completed: boolPtr(true)})
		assert.ErrorIs(t, err, entities.ErrTaskNotFound)
	})

	t.Run("EmptyPatchIsNoop", func(t *testing.T) {
		err := repo.UpdateFields(context.Background(), "u1", "t1", ports.TaskFieldPatch{})
		require.NoError(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "u1", "t1"))

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs("missing", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u1", "missing"), entities.ErrTaskNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskDeleteAllForUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`DELETE FROM tasks WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteAllForUser(context.Background(), "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
