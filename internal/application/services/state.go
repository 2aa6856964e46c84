package services

import (
	"sync"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/ports"
)

// State is the single in-memory app state container. It owns the task,
// project, profile and settings collections plus the current session,
// and writes every change through the local store as a full snapshot.
// Services receive it by reference instead of touching ambient globals.
type State struct {
	mu       sync.Mutex
	tasks    []entities.Task
	projects []entities.Project
	profile  entities.Profile
	settings entities.Settings
	session  *ports.Session

	store ports.LocalStore
}

// NewState loads the persisted snapshot into memory. Missing or corrupt
// keys come back as defaults from the store, so this cannot fail.
func NewState(store ports.LocalStore) *State {
	return &State{
		tasks:    store.LoadTasks(),
		projects: store.LoadProjects(),
		profile:  store.LoadProfile(),
		settings: store.LoadSettings(),
		store:    store,
	}
}

// Tasks returns a copy of the task collection in display order.
func (s *State) Tasks() []entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Projects returns a copy of the project collection in user order.
func (s *State) Projects() []entities.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Profile returns the current profile.
func (s *State) Profile() entities.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Settings returns the current settings.
func (s *State) Settings() entities.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Session returns the current session, nil when signed out.
func (s *State) Session() *ports.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SetSession records the authenticated identity.
func (s *State) SetSession(session *ports.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

// MutateTasks applies fn to the task collection under the lock and
// persists the result.
func (s *State) MutateTasks(fn func(tasks []entities.Task) []entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = fn(s.tasks)
	return s.store.SaveTasks(s.tasks)
}

// MutateProjects applies fn to the project collection under the lock
// and persists the result.
func (s *State) MutateProjects(fn func(projects []entities.Project) []entities.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = fn(s.projects)
	return s.store.SaveProjects(s.projects)
}

// SetProfile replaces and persists the profile.
func (s *State) SetProfile(profile entities.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	return s.store.SaveProfile(profile)
}

// MutateSettings applies fn to the settings under the lock and persists
// the result.
func (s *State) MutateSettings(fn func(settings *entities.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings)
	return s.store.SaveSettings(s.settings)
}

// ReplaceFromRemote applies a pull-all result: returned collections
// fully replace local state, even when empty; the profile is merged
// field-by-field for name, email and avatar.
func (s *State) ReplaceFromRemote(snap *ports.RemoteSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Tasks != nil {
		s.tasks = snap.Tasks
		if err := s.store.SaveTasks(s.tasks); err != nil {
			return err
		}
	}
	if snap.Projects != nil {
		s.projects = snap.Projects
		if err := s.store.SaveProjects(s.projects); err != nil {
			return err
		}
	}
	if snap.Profile != nil {
		s.profile.Name = snap.Profile.Name
		// Email comes from the auth identity; an empty remote value
		// must not blank a locally known one.
		if snap.Profile.Email != "" {
			s.profile.Email = snap.Profile.Email
		}
		s.profile.Avatar = snap.Profile.Avatar
		if err := s.store.SaveProfile(s.profile); err != nil {
			return err
		}
	}
	return nil
}

// Clear resets everything to defaults and wipes the persisted keys.
// Used on sign-out; the remote copies are left untouched.
func (s *State) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = []entities.Task{}
	s.projects = []entities.Project{}
	s.profile = entities.DefaultProfile()
	s.settings = entities.DefaultSettings()
	s.session = nil
	return s.store.Clear()
}
