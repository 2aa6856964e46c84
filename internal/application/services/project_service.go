package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// ProjectService handles project operations on the client.
type ProjectService struct {
	state  *State
	remote ports.RemoteStore
	conn   ports.Connectivity
	logger *logger.Logger
}

// NewProjectService creates a new project service
func NewProjectService(state *State, remote ports.RemoteStore, conn ports.Connectivity, logger *logger.Logger) *ProjectService {
	return &ProjectService{
		state:  state,
		remote: remote,
		conn:   conn,
		logger: logger,
	}
}

// CreateProject appends a new project to the list.
func (s *ProjectService) CreateProject(ctx context.Context, req ports.CreateProjectRequest) (*entities.Project, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	project := entities.Project{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Color:    req.Color,
		Icon:     req.Icon,
		Progress: 0,
	}

	err := s.state.MutateProjects(func(projects []entities.Project) []entities.Project {
		return append(projects, project)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist project: %w", err)
	}

	s.logger.Info("Project created", "project_id", project.ID, "name", project.Name)

	s.pushProjects(ctx, "create_project", []entities.Project{project})

	return &project, nil
}

// UpdateProject edits a project in place.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, req ports.UpdateProjectRequest) (*entities.Project, error) {
	var updated *entities.Project

	err := s.state.MutateProjects(func(projects []entities.Project) []entities.Project {
		for i := range projects {
			if projects[i].ID != id {
				continue
			}
			if req.Name != nil {
				projects[i].Name = *req.Name
			}
			if req.Color != nil {
				projects[i].Color = *req.Color
			}
			if req.Icon != nil {
				projects[i].Icon = *req.Icon
			}
			copied := projects[i]
			updated = &copied
			break
		}
		return projects
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist project: %w", err)
	}
	if updated == nil {
		return nil, entities.ErrProjectNotFound
	}

	s.pushProjects(ctx, "update_project", []entities.Project{*updated})

	return updated, nil
}

// DeleteProject removes a project. Tasks referencing it are left alone;
// their dangling projectId reads as unassigned from here on.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	found := false
	err := s.state.MutateProjects(func(projects []entities.Project) []entities.Project {
		out := projects[:0]
		for i := range projects {
			if projects[i].ID == id {
				found = true
				continue
			}
			out = append(out, projects[i])
		}
		return out
	})
	if err != nil {
		return fmt.Errorf("failed to persist projects: %w", err)
	}
	if !found {
		return entities.ErrProjectNotFound
	}

	s.logger.Info("Project deleted", "project_id", id)

	if s.canPush("delete_project") {
		if err := s.remote.DeleteProject(ctx, id); err != nil {
			syncFailures.WithLabelValues("delete_project").Inc()
			s.logger.LogSyncFailure("delete_project", err)
		}
	}

	return nil
}

// Reorder persists a new user-chosen project order and upserts the full
// reordered list remotely.
func (s *ProjectService) Reorder(ctx context.Context, orderedIDs []string) error {
	var reordered []entities.Project

	err := s.state.MutateProjects(func(projects []entities.Project) []entities.Project {
		byID := make(map[string]entities.Project, len(projects))
		for i := range projects {
			byID[projects[i].ID] = projects[i]
		}

		out := make([]entities.Project, 0, len(projects))
		for _, id := range orderedIDs {
			if p, ok := byID[id]; ok {
				out = append(out, p)
				delete(byID, id)
			}
		}
		// Anything not named keeps its relative position at the tail.
		for i := range projects {
			if _, ok := byID[projects[i].ID]; ok {
				out = append(out, projects[i])
			}
		}

		reordered = out
		return out
	})
	if err != nil {
		return fmt.Errorf("failed to persist projects: %w", err)
	}

	s.pushProjects(ctx, "reorder_projects", reordered)

	return nil
}

// Projects returns the current project collection in user order.
func (s *ProjectService) Projects() []entities.Project {
	return s.state.Projects()
}

// ProjectProgress derives the completion percentage of a project from
// its current tasks.
func (s *ProjectService) ProjectProgress(id string) (int, error) {
	for _, p := range s.state.Projects() {
		if p.ID == id {
			return p.ComputeProgress(s.state.Tasks()), nil
		}
	}
	return 0, entities.ErrProjectNotFound
}

func (s *ProjectService) canPush(op string) bool {
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

func (s *ProjectService) pushProjects(ctx context.Context, op string, projects []entities.Project) {
	if !s.canPush(op) {
		return
	}

	session := s.state.Session()
	syncPushes.WithLabelValues("projects").Inc()
	if err := s.remote.PushProjects(ctx, session.UserID, projects); err != nil {
		syncFailures.WithLabelValues(op).Inc()
		s.logger.LogSyncFailure(op, err)
	}
}
