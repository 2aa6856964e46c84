package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/ports"
)

// ProjectRepositoryImpl implements the ProjectRepository interface
type ProjectRepositoryImpl struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &ProjectRepositoryImpl{db: db}
}

// Upsert inserts or replaces projects keyed by id. The client pushes the
// whole ordered list, so sort_order reflects the user-chosen order.
func (r *ProjectRepositoryImpl) Upsert(ctx context.Context, userID string, projects []entities.Project) error {
	if len(projects) == 0 {
		return nil
	}

	query := `
		INSERT INTO projects (id, user_id, name, color, icon, progress, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color,
			icon = EXCLUDED.icon,
			progress = EXCLUDED.progress,
			sort_order = EXCLUDED.sort_order
		WHERE projects.user_id = EXCLUDED.user_id`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert projects: %w", err)
	}
	defer tx.Rollback()

	for i := range projects {
		p := projects[i]
		_, err := tx.ExecContext(ctx, query, p.ID, userID, p.Name, p.Color, p.Icon, p.Progress, i)
		if err != nil {
			return fmt.Errorf("upsert project %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert projects: %w", err)
	}

	return nil
}

func (r *ProjectRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]entities.Project, error) {
	query := `
		SELECT id, user_id, name, color, icon, progress
		FROM projects
		WHERE user_id = $1
		ORDER BY sort_order ASC`

	projects := []entities.Project{}
	err := r.db.SelectContext(ctx, &projects, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return projects, nil
}

// Delete removes a project. Tasks referencing it keep their project_id;
// consumers treat the dangling reference as unassigned.
func (r *ProjectRepositoryImpl) Delete(ctx context.Context, userID, projectID string) error {
	query := `DELETE FROM projects WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrProjectNotFound
	}

	return nil
}

func (r *ProjectRepositoryImpl) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user projects: %w", err)
	}
	return nil
}

// ProfileRepositoryImpl implements the ProfileRepository interface
type ProfileRepositoryImpl struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sqlx.DB) ports.ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) Upsert(ctx context.Context, userID string, profile entities.Profile) error {
	query := `
		INSERT INTO profiles (user_id, name, email, avatar)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			avatar = EXCLUDED.avatar`

	_, err := r.db.ExecContext(ctx, query, userID, profile.Name, profile.Email, profile.Avatar)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

func (r *ProfileRepositoryImpl) GetByUser(ctx context.Context, userID string) (*entities.Profile, error) {
	query := `SELECT name, email, avatar FROM profiles WHERE user_id = $1`

	var profile entities.Profile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

func (r *ProfileRepositoryImpl) DeleteForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
