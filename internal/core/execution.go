package core

import (
	"context"
	"fmt"

	"github.com/edvin/cronhook/internal/model"
)

type ExecutionService struct {
	db DB
}

func NewExecutionService(db DB) *ExecutionService {
	return &ExecutionService{db: db}
}

func (s *ExecutionService) GetByID(ctx context.Context, id string) (*model.Execution, error) {
	var e model.Execution
	err := s.db.QueryRow(ctx,
		`SELECT id, cronjob_id, state, created_at, updated_at FROM executions WHERE id = $1`, id,
	).Scan(&e.ID, &e.CronjobID, &e.State, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get execution %s: %w", id, err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, execution_id, state, details, created_at
		 FROM execution_statuses WHERE execution_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("list statuses for execution %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var st model.ExecutionStatus
		if err := rows.Scan(&st.ID, &st.ExecutionID, &st.State, &st.Details, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan execution status: %w", err)
		}
		e.Statuses = append(e.Statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate execution statuses: %w", err)
	}

	return &e, nil
}

// ListByCronjob returns executions newest first. The cursor is the ID of the
// last execution of the previous page.
func (s *ExecutionService) ListByCronjob(ctx context.Context, cronjobID string, limit int, cursor string) ([]model.Execution, bool, error) {
	query := `SELECT id, cronjob_id, state, created_at, updated_at FROM executions WHERE cronjob_id = $1`
	args := []any{cronjobID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND (created_at, id) < (SELECT created_at, id FROM executions WHERE id = $%d)`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY created_at DESC, id DESC`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list executions for cronjob %s: %w", cronjobID, err)
	}
	defer rows.Close()

	var executions []model.Execution
	for rows.Next() {
		var e model.Execution
		if err := rows.Scan(&e.ID, &e.CronjobID, &e.State, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan execution: %w", err)
		}
		executions = append(executions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate executions: %w", err)
	}

	hasMore := len(executions) > limit
	if hasMore {
		executions = executions[:limit]
	}
	return executions, hasMore, nil
}

// AppendStatus adds one entry to an execution's history and refreshes the
// denormalized state in the same transaction. Used by the status callback
// endpoint, so out-of-order reports are expected: the state update always
// recomputes from the latest entry by creation time instead of trusting the
// one just written.
func (s *ExecutionService) AppendStatus(ctx context.Context, executionID string, state model.ExecutionState, details map[string]any) (*model.ExecutionStatus, error) {
	if !model.ValidExecutionState(state) {
		return nil, fmt.Errorf("unknown execution state %q", state)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin append status: %w", err)
	}
	defer tx.Rollback(ctx)

	status := model.ExecutionStatus{
		ExecutionID: executionID,
		State:       state,
		Details:     details,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO execution_statuses (execution_id, state, details)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		executionID, state, details,
	).Scan(&status.ID, &status.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert status for execution %s: %w", executionID, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE executions SET state = (
		   SELECT state FROM execution_statuses
		   WHERE execution_id = $1
		   ORDER BY created_at DESC, id DESC LIMIT 1
		 ), updated_at = now()
		 WHERE id = $1`,
		executionID)
	if err != nil {
		return nil, fmt.Errorf("update state for execution %s: %w", executionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit append status: %w", err)
	}
	return &status, nil
}
