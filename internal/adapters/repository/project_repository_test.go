package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskito/core/internal/domain/entities"
)

func TestProjectUpsertWritesSortOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)

	projects := []entities.Project{
		{ID: "p1", Name: "Home", Color: "#f00", Icon: "house", Progress: 50},
		{ID: "p2", Name: "Work", Color: "#0f0"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO projects .* ON CONFLICT \(id\) DO UPDATE SET`).
		WithArgs("p1", "u1", "Home", "#f00", "house", 50, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO projects .* ON CONFLICT \(id\) DO UPDATE SET`).
		WithArgs("p2", "u1", "Work", "#0f0", "", 0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), "u1", projects))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectListByUserOrdersBySortOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)

	columns := []string{"id", "user_id", "name", "color", "icon", "progress"}
	mock.ExpectQuery(`SELECT .* FROM projects WHERE user_id = \$1 ORDER BY sort_order ASC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p2", "u1", "Work", "#0f0", "", 0).
			AddRow("p1", "u1", "Home", "#f00", "house", 50))

	projects, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p2", projects[0].ID)
	assert.Equal(t, "p1", projects[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1 AND user_id = \$2`).
		WithArgs("p1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "u1", "p1"))

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1 AND user_id = \$2`).
		WithArgs("missing", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u1", "missing"), entities.ErrProjectNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpsertAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec(`INSERT INTO profiles .* ON CONFLICT \(user_id\) DO UPDATE SET`).
		WithArgs("u1", "Ada", "ada@example.com", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Upsert(context.Background(), "u1", entities.Profile{
		Name:  "Ada",
		Email: "ada@example.com",
	}))

	mock.ExpectQuery(`SELECT name, email, avatar FROM profiles WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email", "avatar"}).
			AddRow("Ada", "ada@example.com", nil))

	profile, err := repo.GetByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ada", profile.Name)
	assert.Nil(t, profile.Avatar)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileGetMissingReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`SELECT name, email, avatar FROM profiles WHERE user_id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email", "avatar"}))

	profile, err := repo.GetByUser(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, profile)

	require.NoError(t, mock.ExpectationsWereMet())
}
