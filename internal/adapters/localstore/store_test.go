package localstore

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := New(fs, "/data", logger.NewNop())
	require.NoError(t, err)
	return store, fs
}

func TestFreshStoreReturnsDefaults(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Empty(t, store.LoadTasks())
	assert.NotNil(t, store.LoadTasks())
	assert.Empty(t, store.LoadProjects())
	assert.Equal(t, entities.DefaultProfile(), store.LoadProfile())
	assert.Equal(t, entities.DefaultSettings(), store.LoadSettings())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	tasks := []entities.Task{
		{
			ID:              "t1",
			Title:           "Write report",
			Type:            entities.ItemTypeTask,
			Date:            strPtr("2026-09-01"),
			Time:            strPtr("14:00"),
			ReminderMinutes: intPtr(15),
			Tags:            []string{"work", "urgent"},
			CreatedAt:       1756713600000,
		},
		{
			ID:    "n1",
			Title: "Ideas",
			Type:  entities.ItemTypeNote,
			Tags:  []string{},
		},
	}
	require.NoError(t, store.SaveTasks(tasks))
	assert.Equal(t, tasks, store.LoadTasks())

	projects := []entities.Project{{ID: "p1", Name: "Home", Color: "#f00", Icon: "house"}}
	require.NoError(t, store.SaveProjects(projects))
	assert.Equal(t, projects, store.LoadProjects())

	profile := entities.Profile{Name: "Ada", Email: "ada@example.com", Avatar: strPtr("img")}
	require.NoError(t, store.SaveProfile(profile))
	assert.Equal(t, profile, store.LoadProfile())

	settings := entities.DefaultSettings()
	settings.DarkMode = true
	settings.ReminderTone = "chime"
	require.NoError(t, store.SaveSettings(settings))
	assert.Equal(t, settings, store.LoadSettings())
}

func TestCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	store, fs := newTestStore(t)

	require.NoError(t, store.SaveTasks([]entities.Task{{ID: "t1", Title: "x", Type: entities.ItemTypeTask}}))

	for _, key := range []string{"taskito_tasks.json", "taskito_profile.json", "taskito_settings.json"} {
		require.NoError(t, afero.WriteFile(fs, "/data/"+key, []byte("{nope"), 0o644))
	}

	assert.Empty(t, store.LoadTasks())
	assert.Equal(t, entities.DefaultProfile(), store.LoadProfile())
	assert.Equal(t, entities.DefaultSettings(), store.LoadSettings())
}

func TestSaveRewritesFullSnapshot(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveTasks([]entities.Task{
		{ID: "a", Title: "a", Type: entities.ItemTypeTask},
		{ID: "b", Title: "b", Type: entities.ItemTypeTask},
	}))
	require.NoError(t, store.SaveTasks([]entities.Task{
		{ID: "b", Title: "b", Type: entities.ItemTypeTask},
	}))

	tasks := store.LoadTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].ID)
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveTasks([]entities.Task{{ID: "t1", Title: "x", Type: entities.ItemTypeTask}}))
	require.NoError(t, store.SaveProfile(entities.Profile{Name: "Ada"}))

	require.NoError(t, store.Clear())

	assert.Empty(t, store.LoadTasks())
	assert.Equal(t, entities.DefaultProfile(), store.LoadProfile())

	// Clearing an already empty store is fine.
	require.NoError(t, store.Clear())
}
