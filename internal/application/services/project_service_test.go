package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

func newProjectFixture(online bool, signedIn bool) (*ProjectService, *State, *fakeRemote) {
	store := newMemStore()
	state := NewState(store)
	if signedIn {
		state.SetSession(testSession())
	}
	remote := newFakeRemote()
	svc := NewProjectService(state, remote, &fakeConn{online: online}, logger.NewNop())
	return svc, state, remote
}

func TestCreateProjectAppendsAtEnd(t *testing.T) {
	svc, state, remote := newProjectFixture(true, true)

	first, err := svc.CreateProject(context.Background(), ports.CreateProjectRequest{Name: "Home", Color: "#f00"})
	require.NoError(t, err)
	second, err := svc.CreateProject(context.Background(), ports.CreateProjectRequest{Name: "Work", Color: "#0f0"})
	require.NoError(t, err)

	projects := state.Projects()
	require.Len(t, projects, 2)
	assert.Equal(t, first.ID, projects[0].ID)
	assert.Equal(t, second.ID, projects[1].ID)
	assert.Equal(t, 0, first.Progress)
	assert.Len(t, remote.pushedProjects, 2)

	_, err = svc.CreateProject(context.Background(), ports.CreateProjectRequest{Color: "#00f"})
	assert.Error(t, err, "name is required")
}

func TestUpdateProject(t *testing.T) {
	svc, _, _ := newProjectFixture(false, false)

	created, err := svc.CreateProject(context.Background(), ports.CreateProjectRequest{Name: "Home", Color: "#f00"})
	require.NoError(t, err)

	updated, err := svc.UpdateProject(context.Background(), created.ID, ports.UpdateProjectRequest{
		Name:  strPtr("House"),
		Color: strPtr("#00f"),
	})
	require.NoError(t, err)
	assert.Equal(t, "House", updated.Name)
	assert.Equal(t, "#00f", updated.Color)

	_, err = svc.UpdateProject(context.Background(), "missing", ports.UpdateProjectRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, entities.ErrProjectNotFound)
}

func TestDeleteProjectLeavesTasksUntouched(t *testing.T) {
	svc, state, remote := newProjectFixture(true, true)

	created, err := svc.CreateProject(context.Background(), ports.CreateProjectRequest{Name: "Home", Color: "#f00"})
	require.NoError(t, err)

	require.NoError(t, state.MutateTasks(func([]entities.Task) []entities.Task {
		pid := created.ID
		return []entities.Task{{ID: "t1", Title: "Orphan-to-be", Type: entities.ItemTypeTask, ProjectID: &pid}}
	}))

	require.NoError(t, svc.DeleteProject(context.Background(), created.ID))

	assert.Empty(t, state.Projects())
	assert.Equal(t, []string{created.ID}, remote.deletedProjects)

	// The task keeps its dangling reference.
	tasks := state.Tasks()
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].ProjectID)
	assert.Equal(t, created.ID, *tasks[0].ProjectID)

	assert.ErrorIs(t, svc.DeleteProject(context.Background(), created.ID), entities.ErrProjectNotFound)
}

func TestReorder(t *testing.T) {
	svc, state, remote := newProjectFixture(true, true)

	a, _ := svc.CreateProject(context.Background(), ports.CreateProjectRequest{Name: "A", Color: "#111"})
	b, _ := svc.CreateProject(context.Background(), ports.CreateProjectRequest{Name: "B", Color: "#222"})
	c, _ := svc.CreateProject(context.Background(), ports.CreateProjectRequest{Name: "C", Color: "#333"})

	require.NoError(t, svc.Reorder(context.Background(), []string{c.ID, a.ID}))

	projects := state.Projects()
	require.Len(t, projects, 3)
	assert.Equal(t, c.ID, projects[0].ID)
	assert.Equal(t, a.ID, projects[1].ID)
	assert.Equal(t, b.ID, projects[2].ID, "unnamed projects keep their relative tail position")

	// The full reordered list goes out, not a delta.
	last := remote.pushedProjects[len(remote.pushedProjects)-1]
	assert.Len(t, last, 3)

	// Unknown ids are ignored.
	require.NoError(t, svc.Reorder(context.Background(), []string{"ghost", b.ID}))
	assert.Equal(t, b.ID, state.Projects()[0].ID)
}

func TestProjectProgress(t *testing.T) {
	svc, state, _ := newProjectFixture(false, false)

	created, err := svc.CreateProject(context.Background(), ports.CreateProjectRequest{Name: "Home", Color: "#f00"})
	require.NoError(t, err)

	pid := created.ID
	require.NoError(t, state.MutateTasks(func([]entities.Task) []entities.Task {
		return []entities.Task{
			{ID: "a", Title: "a", Type: entities.ItemTypeTask, ProjectID: &pid, Completed: true},
			{ID: "b", Title: "b", Type: entities.ItemTypeTask, ProjectID: &pid},
		}
	}))

	progress, err := svc.ProjectProgress(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, progress)

	_, err = svc.ProjectProgress("missing")
	assert.ErrorIs(t, err, entities.ErrProjectNotFound)
}
