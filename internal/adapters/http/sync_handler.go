package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskito/core/internal/application/services"
	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// SyncHandler serves the table-oriented sync surface the client pushes
// to and pulls from. Every route is scoped to the authenticated user.
type SyncHandler struct {
	taskRepo    ports.TaskRepository
	projectRepo ports.ProjectRepository
	profileRepo ports.ProfileRepository
	authService *services.AuthService
	logger      *logger.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(
	taskRepo ports.TaskRepository,
	projectRepo ports.ProjectRepository,
	profileRepo ports.ProfileRepository,
	authService *services.AuthService,
	logger *logger.Logger,
) *SyncHandler {
	return &SyncHandler{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		profileRepo: profileRepo,
		authService: authService,
		logger:      logger,
	}
}

// PullAll returns the full snapshot of the user's tasks, projects and
// profile in one round-trip.
func (h *SyncHandler) PullAll(c echo.Context) error {
	userID := getUserIDFromContext(c)
	ctx := c.Request().Context()

	tasks, err := h.taskRepo.ListByUser(ctx, userID)
	if err != nil {
		h.logger.Error("List tasks failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load tasks")
	}

	projects, err := h.projectRepo.ListByUser(ctx, userID)
	if err != nil {
		h.logger.Error("List projects failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load projects")
	}

	profile, err := h.profileRepo.GetByUser(ctx, userID)
	if err != nil {
		h.logger.Error("Load profile failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
	}

	return c.JSON(http.StatusOK, ports.SyncSnapshotResponse{
		Tasks:    tasks,
		Projects: projects,
		Profile:  profile,
	})
}

// PushTasks bulk-upserts the posted tasks for the authenticated user.
func (h *SyncHandler) PushTasks(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.PushTasksRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.taskRepo.Upsert(c.Request().Context(), userID, req.Tasks); err != nil {
		h.logger.Error("Upsert tasks failed", "error", err, "user_id", userID, "count", len(req.Tasks))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store tasks")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Tasks stored"})
}

// PushProjects bulk-upserts the posted projects, recording their order.
func (h *SyncHandler) PushProjects(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.PushProjectsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.projectRepo.Upsert(c.Request().Context(), userID, req.Projects); err != nil {
		h.logger.Error("Upsert projects failed", "error", err, "user_id", userID, "count", len(req.Projects))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store projects")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Projects stored"})
}

// PushProfile stores the posted profile record.
func (h *SyncHandler) PushProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var profile entities.Profile
	if err := c.Bind(&profile); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.profileRepo.Upsert(c.Request().Context(), userID, profile); err != nil {
		h.logger.Error("Upsert profile failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store profile")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Profile stored"})
}

// PatchTask applies a partial field update to one task.
func (h *SyncHandler) PatchTask(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID := c.Param("id")

	var patch ports.TaskFieldPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if patch.IsEmpty() {
		return echo.NewHTTPError(http.StatusBadRequest, "Patch carries no fields")
	}

	err := h.taskRepo.UpdateFields(c.Request().Context(), userID, taskID, patch)
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		h.logger.Error("Patch task failed", "error", err, "user_id", userID, "task_id", taskID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task updated"})
}

// DeleteTask removes one task owned by the authenticated user.
func (h *SyncHandler) DeleteTask(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID := c.Param("id")

	if err := h.taskRepo.Delete(c.Request().Context(), userID, taskID); err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		h.logger.Error("Delete task failed", "error", err, "user_id", userID, "task_id", taskID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete task")
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteProject removes one project. Tasks that referenced it keep
// their project id; the client treats the dangling reference as
// unassigned.
func (h *SyncHandler) DeleteProject(c echo.Context) error {
	userID := getUserIDFromContext(c)
	projectID := c.Param("id")

	if err := h.projectRepo.Delete(c.Request().Context(), userID, projectID); err != nil {
		if errors.Is(err, entities.ErrProjectNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Project not found")
		}
		h.logger.Error("Delete project failed", "error", err, "user_id", userID, "project_id", projectID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete project")
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteAccount removes the authenticated user and all owned data.
func (h *SyncHandler) DeleteAccount(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.authService.DeleteAccount(c.Request().Context(), userID); err != nil {
		h.logger.Error("Delete account failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete account")
	}

	return c.NoContent(http.StatusNoContent)
}
