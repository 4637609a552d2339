package core

import (
	"context"
	"fmt"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/platform"
	"github.com/edvin/cronhook/internal/scheduler"
)

type CronjobService struct {
	db           DB
	registration *RegistrationService
	enqueuer     scheduler.Enqueuer
}

func NewCronjobService(db DB, registration *RegistrationService, enqueuer scheduler.Enqueuer) *CronjobService {
	return &CronjobService{db: db, registration: registration, enqueuer: enqueuer}
}

// Create inserts a cronjob and, when it is enabled, registers its schedule.
// The insert commits only after the scheduler call succeeds, so a scheduler
// failure rolls the row back and the enabled flag cannot diverge from the
// registration state.
func (s *CronjobService) Create(ctx context.Context, cronjob *model.Cronjob) error {
	if err := model.ValidateMethod(cronjob.Method); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create cronjob: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO cronjobs (id, project_id, title, schedule, url, method, enabled, token_endpoint, scope, client_id, client_secret, template_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		cronjob.ID, cronjob.ProjectID, cronjob.Title, cronjob.Schedule, cronjob.URL,
		cronjob.Method, cronjob.Enabled, cronjob.Auth.TokenEndpoint, cronjob.Auth.Scope,
		cronjob.Auth.ClientID, cronjob.Auth.ClientSecret, cronjob.TemplateID,
		cronjob.CreatedAt, cronjob.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create cronjob: %w", err)
	}

	if cronjob.Enabled {
		if err := s.registration.Add(ctx, cronjob); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create cronjob: %w", err)
	}
	return nil
}

func (s *CronjobService) GetByID(ctx context.Context, id string) (*model.Cronjob, error) {
	var c model.Cronjob
	err := s.db.QueryRow(ctx,
		`SELECT id, project_id, title, schedule, url, method, enabled, token_endpoint, scope, client_id, client_secret, template_id, created_at, updated_at
		 FROM cronjobs WHERE id = $1`, id,
	).Scan(&c.ID, &c.ProjectID, &c.Title, &c.Schedule, &c.URL, &c.Method, &c.Enabled,
		&c.Auth.TokenEndpoint, &c.Auth.Scope, &c.Auth.ClientID, &c.Auth.ClientSecret,
		&c.TemplateID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get cronjob %s: %w", id, err)
	}
	return &c, nil
}

func (s *CronjobService) ListByProject(ctx context.Context, projectID string, limit int, cursor string) ([]model.Cronjob, bool, error) {
	query := `SELECT id, project_id, title, schedule, url, method, enabled, token_endpoint, scope, client_id, client_secret, template_id, created_at, updated_at FROM cronjobs WHERE project_id = $1`
	args := []any{projectID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list cronjobs for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var cronjobs []model.Cronjob
	for rows.Next() {
		var c model.Cronjob
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Title, &c.Schedule, &c.URL, &c.Method,
			&c.Enabled, &c.Auth.TokenEndpoint, &c.Auth.Scope, &c.Auth.ClientID,
			&c.Auth.ClientSecret, &c.TemplateID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan cronjob: %w", err)
		}
		cronjobs = append(cronjobs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate cronjobs: %w", err)
	}

	hasMore := len(cronjobs) > limit
	if hasMore {
		cronjobs = cronjobs[:limit]
	}
	return cronjobs, hasMore, nil
}

// Update persists cronjob changes and syncs the scheduler in the same
// transaction: an enabled cronjob gets its registration replaced so schedule
// edits take effect, a disabled one gets it removed. A scheduler failure
// rolls the row change back.
func (s *CronjobService) Update(ctx context.Context, cronjob *model.Cronjob) error {
	if err := model.ValidateMethod(cronjob.Method); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update cronjob: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE cronjobs SET title = $1, schedule = $2, url = $3, method = $4, enabled = $5, token_endpoint = $6, scope = $7, client_id = $8, client_secret = $9, template_id = $10, updated_at = now()
		 WHERE id = $11`,
		cronjob.Title, cronjob.Schedule, cronjob.URL, cronjob.Method, cronjob.Enabled,
		cronjob.Auth.TokenEndpoint, cronjob.Auth.Scope, cronjob.Auth.ClientID,
		cronjob.Auth.ClientSecret, cronjob.TemplateID, cronjob.ID,
	)
	if err != nil {
		return fmt.Errorf("update cronjob %s: %w", cronjob.ID, err)
	}

	if cronjob.Enabled {
		if err := s.registration.Add(ctx, cronjob); err != nil {
			return err
		}
	} else {
		if err := s.registration.Remove(ctx, cronjob.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update cronjob %s: %w", cronjob.ID, err)
	}
	return nil
}

// SetEnabled flips the enabled flag and syncs the scheduler registration.
// The flag commits together with the scheduler call.
func (s *CronjobService) SetEnabled(ctx context.Context, id string, enabled bool) (*model.Cronjob, error) {
	cronjob, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin set cronjob enabled: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE cronjobs SET enabled = $1, updated_at = now() WHERE id = $2`, enabled, id)
	if err != nil {
		return nil, fmt.Errorf("set cronjob %s enabled=%t: %w", id, enabled, err)
	}
	cronjob.Enabled = enabled

	if enabled {
		if err := s.registration.Add(ctx, cronjob); err != nil {
			return nil, err
		}
	} else {
		if err := s.registration.Remove(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit set cronjob %s enabled: %w", id, err)
	}
	return cronjob, nil
}

// Delete unregisters the schedule and removes the row in one transaction.
// Execution history goes with it through the foreign key cascade.
func (s *CronjobService) Delete(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete cronjob: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM cronjobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cronjob %s: %w", id, err)
	}

	if err := s.registration.Remove(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete cronjob %s: %w", id, err)
	}
	return nil
}

// Trigger fires a cronjob once, outside its schedule. The execution ID is
// generated here and handed to the enqueued action so the caller can poll
// the execution before the trigger has even started. Disabled cronjobs can
// be triggered; only the recurring schedule honors the enabled flag.
func (s *CronjobService) Trigger(ctx context.Context, id string) (string, error) {
	cronjob, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	executionID := platform.NewID()
	err = s.enqueuer.Enqueue(ctx, scheduler.TriggerAction{
		CronjobID:   cronjob.ID,
		ExecutionID: executionID,
	})
	if err != nil {
		return "", fmt.Errorf("trigger cronjob %s: %w", id, err)
	}
	return executionID, nil
}
