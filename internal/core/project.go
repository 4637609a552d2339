package core

import (
	"context"
	"fmt"

	"github.com/edvin/cronhook/internal/model"
)

type ProjectService struct {
	db           DB
	registration *RegistrationService
}

func NewProjectService(db DB, registration *RegistrationService) *ProjectService {
	return &ProjectService{db: db, registration: registration}
}

func (s *ProjectService) Create(ctx context.Context, project *model.Project) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO projects (id, title, token_endpoint, scope, client_id, client_secret, template_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		project.ID, project.Title, project.Auth.TokenEndpoint, project.Auth.Scope,
		project.Auth.ClientID, project.Auth.ClientSecret, project.TemplateID,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRow(ctx,
		`SELECT id, title, token_endpoint, scope, client_id, client_secret, template_id, created_at, updated_at
		 FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Auth.TokenEndpoint, &p.Auth.Scope,
		&p.Auth.ClientID, &p.Auth.ClientSecret, &p.TemplateID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &p, nil
}

func (s *ProjectService) List(ctx context.Context, limit int, cursor string) ([]model.Project, bool, error) {
	query := `SELECT id, title, token_endpoint, scope, client_id, client_secret, template_id, created_at, updated_at FROM projects`
	args := []any{}
	argIdx := 1

	if cursor != "" {
		query += fmt.Sprintf(` WHERE id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Auth.TokenEndpoint, &p.Auth.Scope,
			&p.Auth.ClientID, &p.Auth.ClientSecret, &p.TemplateID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate projects: %w", err)
	}

	hasMore := len(projects) > limit
	if hasMore {
		projects = projects[:limit]
	}
	return projects, hasMore, nil
}

func (s *ProjectService) Update(ctx context.Context, project *model.Project) error {
	_, err := s.db.Exec(ctx,
		`UPDATE projects SET title = $1, token_endpoint = $2, scope = $3, client_id = $4, client_secret = $5, template_id = $6, updated_at = now()
		 WHERE id = $7`,
		project.Title, project.Auth.TokenEndpoint, project.Auth.Scope,
		project.Auth.ClientID, project.Auth.ClientSecret, project.TemplateID, project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project %s: %w", project.ID, err)
	}
	return nil
}

// Delete removes a project with all its cronjobs and their execution
// history. The row delete and the scheduler deregistrations share one
// transaction: a scheduler failure rolls the delete back, so no cronjob
// row can outlive the project while its registration is already gone.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	rows, err := s.db.Query(ctx, `SELECT id FROM cronjobs WHERE project_id = $1`, id)
	if err != nil {
		return fmt.Errorf("list cronjobs for project %s: %w", id, err)
	}
	defer rows.Close()

	var cronjobIDs []string
	for rows.Next() {
		var cronjobID string
		if err := rows.Scan(&cronjobID); err != nil {
			return fmt.Errorf("scan cronjob id: %w", err)
		}
		cronjobIDs = append(cronjobIDs, cronjobID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cronjob ids: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete project: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	for _, cronjobID := range cronjobIDs {
		if err := s.registration.Remove(ctx, cronjobID); err != nil {
			return fmt.Errorf("delete project %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete project %s: %w", id, err)
	}
	return nil
}
