package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
)

// Fixed keys of the persisted key space. Each key holds a full JSON
// snapshot of its collection, rewritten on every change.
const (
	keyTasks    = "taskito_tasks.json"
	keyProjects = "taskito_projects.json"
	keyProfile  = "taskito_profile.json"
	keySettings = "taskito_settings.json"
)

// Store is the durable local persistence layer. Reads of missing or
// corrupt keys fail safe to defaults; a corrupt snapshot is never
// surfaced to the user.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *logger.Logger
}

// New creates a store rooted at dir on the given filesystem. Tests pass
// an afero.MemMapFs.
func New(fs afero.Fs, dir string, logger *logger.Logger) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{fs: fs, dir: dir, logger: logger}, nil
}

func (s *Store) LoadTasks() []entities.Task {
	tasks := []entities.Task{}
	if !s.load(keyTasks, &tasks) || tasks == nil {
		return []entities.Task{}
	}
	return tasks
}

func (s *Store) SaveTasks(tasks []entities.Task) error {
	return s.save(keyTasks, tasks)
}

func (s *Store) LoadProjects() []entities.Project {
	projects := []entities.Project{}
	if !s.load(keyProjects, &projects) || projects == nil {
		return []entities.Project{}
	}
	return projects
}

func (s *Store) SaveProjects(projects []entities.Project) error {
	return s.save(keyProjects, projects)
}

func (s *Store) LoadProfile() entities.Profile {
	profile := entities.DefaultProfile()
	if !s.load(keyProfile, &profile) {
		return entities.DefaultProfile()
	}
	return profile
}

func (s *Store) SaveProfile(profile entities.Profile) error {
	return s.save(keyProfile, profile)
}

func (s *Store) LoadSettings() entities.Settings {
	settings := entities.DefaultSettings()
	if !s.load(keySettings, &settings) {
		return entities.DefaultSettings()
	}
	return settings
}

func (s *Store) SaveSettings(settings entities.Settings) error {
	return s.save(keySettings, settings)
}

// Clear wipes every persisted key, returning the store to its seed
// state.
func (s *Store) Clear() error {
	for _, key := range []string{keyTasks, keyProjects, keyProfile, keySettings} {
		if err := s.fs.Remove(s.path(key)); err != nil && !isNotExist(err) {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// load reads and parses a key into dest. It reports whether a usable
// value was found; on corruption dest may be partially filled and the
// caller falls back to defaults.
func (s *Store) load(key string, dest interface{}) bool {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warnw("Discarding corrupt snapshot", "key", key, "error", err.Error())
		return false
	}
	return true
}

func (s *Store) save(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

func isNotExist(err error) bool {
	return err != nil && os.IsNotExist(err)
}
