package core

import (
	"context"
	"fmt"

	"github.com/edvin/cronhook/internal/model"
)

type ConfigTemplateService struct {
	db DB
}

func NewConfigTemplateService(db DB) *ConfigTemplateService {
	return &ConfigTemplateService{db: db}
}

func (s *ConfigTemplateService) Create(ctx context.Context, tmpl *model.ConfigTemplate) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO config_templates (id, key, token_endpoint, scope, client_id, client_secret, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tmpl.ID, tmpl.Key, tmpl.Auth.TokenEndpoint, tmpl.Auth.Scope,
		tmpl.Auth.ClientID, tmpl.Auth.ClientSecret, tmpl.CreatedAt, tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create config template: %w", err)
	}
	return nil
}

func (s *ConfigTemplateService) GetByID(ctx context.Context, id string) (*model.ConfigTemplate, error) {
	var t model.ConfigTemplate
	err := s.db.QueryRow(ctx,
		`SELECT id, key, token_endpoint, scope, client_id, client_secret, created_at, updated_at
		 FROM config_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Key, &t.Auth.TokenEndpoint, &t.Auth.Scope,
		&t.Auth.ClientID, &t.Auth.ClientSecret, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get config template %s: %w", id, err)
	}
	return &t, nil
}

func (s *ConfigTemplateService) List(ctx context.Context, limit int, cursor string) ([]model.ConfigTemplate, bool, error) {
	query := `SELECT id, key, token_endpoint, scope, client_id, client_secret, created_at, updated_at FROM config_templates`
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
		return nil, false, fmt.Errorf("list config templates: %w", err)
	}
	defer rows.Close()

	var templates []model.ConfigTemplate
	for rows.Next() {
		var t model.ConfigTemplate
		if err := rows.Scan(&t.ID, &t.Key, &t.Auth.TokenEndpoint, &t.Auth.Scope,
			&t.Auth.ClientID, &t.Auth.ClientSecret, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan config template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate config templates: %w", err)
	}

	hasMore := len(templates) > limit
	if hasMore {
		templates = templates[:limit]
	}
	return templates, hasMore, nil
}

func (s *ConfigTemplateService) Update(ctx context.Context, tmpl *model.ConfigTemplate) error {
	_, err := s.db.Exec(ctx,
		`UPDATE config_templates SET key = $1, token_endpoint = $2, scope = $3, client_id = $4, client_secret = $5, updated_at = now()
		 WHERE id = $6`,
		tmpl.Key, tmpl.Auth.TokenEndpoint, tmpl.Auth.Scope,
		tmpl.Auth.ClientID, tmpl.Auth.ClientSecret, tmpl.ID,
	)
	if err != nil {
		return fmt.Errorf("update config template %s: %w", tmpl.ID, err)
	}
	return nil
}

// Delete removes a config template. Projects and cronjobs referencing it keep
// working because the foreign keys null out on delete; their effective auth
// simply loses the template layer.
func (s *ConfigTemplateService) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM config_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete config template %s: %w", id, err)
	}
	return nil
}
