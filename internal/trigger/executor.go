package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/metrics"
	"github.com/edvin/cronhook/internal/model"
)

// ExecutionHeader carries the execution id on every outbound trigger request
// so the target can correlate callbacks with the firing.
const ExecutionHeader = "X-Cronhook-Execution"

// Response bodies larger than this are not recorded in status details.
const maxRecordedBody = 64 * 1024

// ErrConfiguration marks errors that no amount of retrying can fix
// (unsupported HTTP method). Callers map it to a non-retryable failure.
var ErrConfiguration = errors.New("configuration error")

// DB defines the database operations used by the executor.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Executor performs one HTTP trigger: token acquisition, dispatch, outcome
// classification and status history appends. Safe for concurrent use.
type Executor struct {
	db      DB
	tokens  *TokenCache
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

func NewExecutor(db DB, tokens *TokenCache, client *http.Client, timeout time.Duration, logger zerolog.Logger) *Executor {
	return &Executor{
		db:      db,
		tokens:  tokens,
		client:  client,
		timeout: timeout,
		logger:  logger.With().Str("component", "trigger-executor").Logger(),
	}
}

// Execute runs one firing of the cronjob to completion. Every failure path
// appends a terminal status entry before the error is returned, so an
// execution is never left stuck at pending; the returned error lets the
// scheduler's retry policy decide about re-delivery with the same execution
// id, which appends to the same history instead of creating a duplicate.
func (e *Executor) Execute(ctx context.Context, cronjobID, executionID string) error {
	cj, auth, err := e.loadCronjob(ctx, cronjobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The cronjob was deleted between scheduling and firing.
			e.logger.Warn().Str("cronjob_id", cronjobID).Msg("cronjob gone, skipping trigger")
			return nil
		}
		return err
	}

	if err := e.ensureExecution(ctx, cronjobID, executionID); err != nil {
		return err
	}
	if err := e.appendStatus(ctx, executionID, model.StatePending, nil); err != nil {
		return err
	}

	if err := model.ValidateMethod(cj.Method); err != nil {
		err = fmt.Errorf("%w: %s", ErrConfiguration, err)
		e.recordFailure(ctx, executionID, model.StateFailed, err, "configuration", 0)
		return err
	}

	var token string
	if auth.NeedsAuthentication() {
		token, err = e.tokens.Token(ctx, auth)
		if err != nil {
			state := classifyError(err)
			e.recordFailure(ctx, executionID, state, err, "token", 0)
			return err
		}
	}

	// Cancelled before the request started: leave the history at pending
	// and let the scheduler redeliver.
	if err := ctx.Err(); err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, cj.Method, cj.URL, nil)
	if err != nil {
		err = fmt.Errorf("build request for %s: %w", cj.URL, err)
		e.recordFailure(ctx, executionID, model.StateFailed, err, "request", 0)
		return err
	}
	req.Header.Set(ExecutionHeader, executionID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	elapsed := time.Since(start)
	metrics.TriggerDuration.Observe(elapsed.Seconds())

	if err != nil {
		state := classifyError(err)
		err = fmt.Errorf("trigger %s %s: %w", cj.Method, cj.URL, err)
		e.recordFailure(ctx, executionID, state, err, "request", elapsed)
		return err
	}
	defer resp.Body.Close()

	// Any returned status code counts as triggered at this layer; whether a
	// 500 is a failure is the consumer's call.
	details := map[string]any{
		"status_code": resp.StatusCode,
		"elapsed_ms":  elapsed.Milliseconds(),
		"headers":     firstHeaderValues(resp.Header),
	}
	if body, ok := readJSONBody(resp); ok {
		details["body"] = body
	}

	if err := e.appendStatus(ctx, executionID, model.StateTriggered, details); err != nil {
		return err
	}
	metrics.TriggerOutcomesTotal.WithLabelValues(string(model.StateTriggered)).Inc()

	e.logger.Info().
		Str("cronjob_id", cronjobID).
		Str("execution_id", executionID).
		Int("status_code", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("trigger delivered")

	return nil
}

// loadCronjob fetches the cronjob together with its project's and resolved
// template's auth sources. The cronjob's own template reference wins over the
// project's; the template is always the least specific source.
func (e *Executor) loadCronjob(ctx context.Context, cronjobID string) (*model.Cronjob, model.TokenAuth, error) {
	var (
		cj                    model.Cronjob
		projectAuth, tmplAuth model.TokenAuth
	)
	err := e.db.QueryRow(ctx,
		`SELECT cj.id, cj.project_id, cj.title, cj.schedule, cj.url, cj.method, cj.enabled,
		        cj.token_endpoint, cj.scope, cj.client_id, cj.client_secret,
		        p.token_endpoint, p.scope, p.client_id, p.client_secret,
		        COALESCE(t.token_endpoint, ''), COALESCE(t.scope, ''), COALESCE(t.client_id, ''), COALESCE(t.client_secret, '')
		 FROM cronjobs cj
		 JOIN projects p ON p.id = cj.project_id
		 LEFT JOIN config_templates t ON t.id = COALESCE(cj.template_id, p.template_id)
		 WHERE cj.id = $1`, cronjobID,
	).Scan(&cj.ID, &cj.ProjectID, &cj.Title, &cj.Schedule, &cj.URL, &cj.Method, &cj.Enabled,
		&cj.Auth.TokenEndpoint, &cj.Auth.Scope, &cj.Auth.ClientID, &cj.Auth.ClientSecret,
		&projectAuth.TokenEndpoint, &projectAuth.Scope, &projectAuth.ClientID, &projectAuth.ClientSecret,
		&tmplAuth.TokenEndpoint, &tmplAuth.Scope, &tmplAuth.ClientID, &tmplAuth.ClientSecret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.TokenAuth{}, err
		}
		return nil, model.TokenAuth{}, fmt.Errorf("load cronjob %s: %w", cronjobID, err)
	}

	effective := model.ResolveTokenAuth(cj.Auth, projectAuth, tmplAuth)
	return &cj, effective, nil
}

// ensureExecution creates the execution row if this is the first delivery of
// the firing. A redelivered execution id reuses the existing row so retries
// append to the same history.
func (e *Executor) ensureExecution(ctx context.Context, cronjobID, executionID string) error {
	_, err := e.db.Exec(ctx,
		`INSERT INTO executions (id, cronjob_id, state, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 ON CONFLICT (id) DO NOTHING`,
		executionID, cronjobID, model.StatePending,
	)
	if err != nil {
		return fmt.Errorf("ensure execution %s: %w", executionID, err)
	}
	return nil
}

// appendStatus inserts a history entry and recomputes the denormalized state
// from the entry with the greatest created_at, in one transaction so readers
// never observe a partial append.
func (e *Executor) appendStatus(ctx context.Context, executionID string, state model.ExecutionState, details map[string]any) error {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin status append: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO execution_statuses (execution_id, state, details, created_at)
		 VALUES ($1, $2, $3, now())`,
		executionID, state, details,
	)
	if err != nil {
		return fmt.Errorf("append %s status to execution %s: %w", state, executionID, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE executions
		 SET state = (SELECT state FROM execution_statuses
		              WHERE execution_id = $1
		              ORDER BY created_at DESC, id DESC
		              LIMIT 1),
		     updated_at = now()
		 WHERE id = $1`,
		executionID,
	)
	if err != nil {
		return fmt.Errorf("update execution %s state: %w", executionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit status append: %w", err)
	}
	return nil
}

// recordFailure appends a terminal failure entry. Append errors are logged,
// not returned: the original trigger error is what must propagate. The
// append runs on a context detached from the trigger's, which may already
// be cancelled; without that the history would stay stuck at pending.
func (e *Executor) recordFailure(ctx context.Context, executionID string, state model.ExecutionState, cause error, source string, elapsed time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	details := map[string]any{
		"error":      cause.Error(),
		"source":     source,
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if err := e.appendStatus(ctx, executionID, state, details); err != nil {
		e.logger.Error().Err(err).
			Str("execution_id", executionID).
			Str("state", string(state)).
			Msg("failed to record trigger failure")
	}
	metrics.TriggerOutcomesTotal.WithLabelValues(string(state)).Inc()
}

// classifyError separates timeout conditions from everything else.
// Cancellation and network timeouts become timed_out; the rest is failed.
func classifyError(err error) model.ExecutionState {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.StateTimedOut
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.StateTimedOut
	}
	return model.StateFailed
}

// firstHeaderValues flattens response headers to their first value each.
func firstHeaderValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}

// readJSONBody decodes the response body when the content type is JSON.
// Non-JSON and oversized bodies are skipped, never recorded.
func readJSONBody(resp *http.Response) (any, bool) {
	ct := resp.Header.Get("Content-Type")
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))
	if ct != "application/json" && !strings.HasSuffix(ct, "+json") {
		return nil, false
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordedBody+1))
	if err != nil || len(raw) > maxRecordedBody {
		return nil, false
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, false
	}
	return body, true
}
