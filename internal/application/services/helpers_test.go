package services

import (
	"context"
	"errors"
	"sync"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/ports"
)

var errRemote = errors.New("remote unavailable")

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// memStore is an in-memory ports.LocalStore for tests.
type memStore struct {
	mu       sync.Mutex
	tasks    []entities.Task
	projects []entities.Project
	profile  *entities.Profile
	settings *entities.Settings
	cleared  bool
}

func newMemStore() *memStore { return &memStore{} }

func (m *memStore) LoadTasks() []entities.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks == nil {
		return []entities.Task{}
	}
	return append([]entities.Task{}, m.tasks...)
}

func (m *memStore) SaveTasks(tasks []entities.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append([]entities.Task{}, tasks...)
	return nil
}

func (m *memStore) LoadProjects() []entities.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.projects == nil {
		return []entities.Project{}
	}
	return append([]entities.Project{}, m.projects...)
}

func (m *memStore) SaveProjects(projects []entities.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append([]entities.Project{}, projects...)
	return nil
}

func (m *memStore) LoadProfile() entities.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return entities.DefaultProfile()
	}
	return *m.profile
}

func (m *memStore) SaveProfile(profile entities.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := profile
	m.profile = &p
	return nil
}

func (m *memStore) LoadSettings() entities.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return entities.DefaultSettings()
	}
	return *m.settings
}

func (m *memStore) SaveSettings(settings entities.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := settings
	m.settings = &s
	return nil
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = nil
	m.projects = nil
	m.profile = nil
	m.settings = nil
	m.cleared = true
	return nil
}

// fakeRemote records remote store calls and optionally fails them all.
type fakeRemote struct {
	mu sync.Mutex

	failAll bool
	snap    *ports.RemoteSnapshot

	pulls           int
	pushedTasks     [][]entities.Task
	pushedProjects  [][]entities.Project
	pushedProfiles  []entities.Profile
	patches         map[string]ports.TaskFieldPatch
	deletedTasks    []string
	deletedProjects []string
	deletedAccounts []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{patches: make(map[string]ports.TaskFieldPatch)}
}

func (f *fakeRemote) PullAll(ctx context.Context, userID string) (*ports.RemoteSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls++
	if f.failAll {
		return nil, errRemote
	}
	if f.snap == nil {
		return &ports.RemoteSnapshot{Tasks: []entities.Task{}, Projects: []entities.Project{}}, nil
	}
	return f.snap, nil
}

func (f *fakeRemote) PushTasks(ctx context.Context, userID string, tasks []entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemote
	}
	f.pushedTasks = append(f.pushedTasks, append([]entities.Task{}, tasks...))
	return nil
}

func (f *fakeRemote) PushProjects(ctx context.Context, userID string, projects []entities.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemote
	}
	f.pushedProjects = append(f.pushedProjects, append([]entities.Project{}, projects...))
	return nil
}

func (f *fakeRemote) PushProfile(ctx context.Context, userID string, profile entities.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemote
	}
	f.pushedProfiles = append(f.pushedProfiles, profile)
	return nil
}

func (f *fakeRemote) UpdateTaskFields(ctx context.Context, taskID string, patch ports.TaskFieldPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemote
	}
	f.patches[taskID] = patch
	return nil
}

func (f *fakeRemote) DeleteTask(ctx context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemote
	}
	f.deletedTasks = append(f.deletedTasks, taskID)
	return nil
}

func (f *fakeRemote) DeleteProject(ctx context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemote
	}
	f.deletedProjects = append(f.deletedProjects, projectID)
	return nil
}

func (f *fakeRemote) DeleteAccount(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemote
	}
	f.deletedAccounts = append(f.deletedAccounts, userID)
	return nil
}

// fakeConn is a switchable ports.Connectivity.
type fakeConn struct {
	online bool
}

func (f *fakeConn) Online() bool { return f.online }

// fakeNotifier records delivery calls.
type fakeNotifier struct {
	mu sync.Mutex

	popups     []entities.Task
	notified   []entities.Task
	tones      []string
	vibrations [][]int
	chimes     int

	popupCleared   bool
	toneStopped    bool
	vibraCancelled bool
	notifyErr      error
	toneErr        error
}

func (f *fakeNotifier) ShowPopup(task entities.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.popups = append(f.popups, task)
}

func (f *fakeNotifier) ClearPopup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.popupCleared = true
}

func (f *fakeNotifier) Notify(task entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notified = append(f.notified, task)
	return nil
}

func (f *fakeNotifier) Chime() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chimes++
	return nil
}

func (f *fakeNotifier) StartTone(tone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toneErr != nil {
		return f.toneErr
	}
	f.tones = append(f.tones, tone)
	return nil
}

func (f *fakeNotifier) StopTone() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toneStopped = true
}

func (f *fakeNotifier) Vibrate(pattern []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vibrations = append(f.vibrations, pattern)
}

func (f *fakeNotifier) CancelVibration() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vibraCancelled = true
}
