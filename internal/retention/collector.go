package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/metrics"
	"github.com/edvin/cronhook/internal/model"
)

// DB defines the database operations used by the collector.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Archiver stores a pruned execution outside the database before deletion.
type Archiver interface {
	Archive(ctx context.Context, execution *model.Execution) error
}

// Collector prunes old execution history. For each cronjob with executions
// older than now minus minAge, everything beyond the minKept most recent
// aged executions is deleted; recent executions are never touched. Deletion
// cascades to status entries.
//
// The collector only ever deletes executions strictly older than the cutoff,
// so it is safe to run alongside ongoing triggers as long as minAge stays
// well above the trigger timeout.
type Collector struct {
	db       DB
	minAge   time.Duration
	minKept  int
	archiver Archiver
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCollector creates a Collector. archiver may be nil, in which case
// pruned executions are dropped without an archive copy.
func NewCollector(db DB, minAge time.Duration, minKept int, archiver Archiver, logger zerolog.Logger) *Collector {
	return &Collector{
		db:       db,
		minAge:   minAge,
		minKept:  minKept,
		archiver: archiver,
		logger:   logger.With().Str("component", "retention-collector").Logger(),
		now:      time.Now,
	}
}

// Run performs one retention sweep and returns the number of executions
// deleted. A failure on one cronjob does not stop the sweep of the others.
func (c *Collector) Run(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.minAge)

	rows, err := c.db.Query(ctx,
		`SELECT DISTINCT cronjob_id FROM executions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list cronjobs with aged executions: %w", err)
	}
	defer rows.Close()

	var cronjobIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan cronjob id: %w", err)
		}
		cronjobIDs = append(cronjobIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate cronjob ids: %w", err)
	}

	var deleted int64
	for _, cronjobID := range cronjobIDs {
		n, err := c.pruneCronjob(ctx, cronjobID, cutoff)
		if err != nil {
			c.logger.Error().Err(err).Str("cronjob_id", cronjobID).Msg("retention prune failed")
			continue
		}
		deleted += n
	}

	if deleted > 0 {
		metrics.RetentionDeletedTotal.Add(float64(deleted))
		c.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("pruned old executions")
	}
	return deleted, nil
}

func (c *Collector) pruneCronjob(ctx context.Context, cronjobID string, cutoff time.Time) (int64, error) {
	rows, err := c.db.Query(ctx,
		`SELECT id FROM executions
		 WHERE cronjob_id = $1 AND created_at < $2
		 ORDER BY created_at DESC
		 OFFSET $3`,
		cronjobID, cutoff, c.minKept)
	if err != nil {
		return 0, fmt.Errorf("list prunable executions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan execution id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate execution ids: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if c.archiver != nil {
		for _, id := range ids {
			execution, err := c.loadExecution(ctx, id)
			if err != nil {
				return 0, err
			}
			if err := c.archiver.Archive(ctx, execution); err != nil {
				// Keep unarchived executions in the database; the next
				// sweep retries them.
				return 0, fmt.Errorf("archive execution %s: %w", id, err)
			}
		}
	}

	tag, err := c.db.Exec(ctx, `DELETE FROM executions WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete executions for cronjob %s: %w", cronjobID, err)
	}
	return tag.RowsAffected(), nil
}

func (c *Collector) loadExecution(ctx context.Context, id string) (*model.Execution, error) {
	var e model.Execution
	err := c.db.QueryRow(ctx,
		`SELECT id, cronjob_id, state, created_at, updated_at FROM executions WHERE id = $1`, id,
	).Scan(&e.ID, &e.CronjobID, &e.State, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load execution %s: %w", id, err)
	}

	rows, err := c.db.Query(ctx,
		`SELECT id, execution_id, state, details, created_at
		 FROM execution_statuses WHERE execution_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("load statuses for execution %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.ExecutionStatus
		if err := rows.Scan(&s.ID, &s.ExecutionID, &s.State, &s.Details, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan execution status: %w", err)
		}
		e.Statuses = append(e.Statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate execution statuses: %w", err)
	}

	return &e, nil
}
