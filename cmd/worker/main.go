package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/edvin/cronhook/internal/activity"
	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/db"
	"github.com/edvin/cronhook/internal/logging"
	"github.com/edvin/cronhook/internal/metrics"
	"github.com/edvin/cronhook/internal/retention"
	"github.com/edvin/cronhook/internal/scheduler"
	"github.com/edvin/cronhook/internal/trigger"
	"github.com/edvin/cronhook/internal/workflow"
)

const taskQueue = "cronhook-tasks"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	tlsConfig, err := cfg.TemporalTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure temporal TLS")
	}
	dialOpts := temporalclient.Options{HostPort: cfg.TemporalAddress}
	if tlsConfig != nil {
		dialOpts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	w := worker.New(tc, taskQueue, worker.Options{})

	// Register activities
	httpClient := &http.Client{Timeout: cfg.TriggerTimeout}
	executor := trigger.NewExecutor(pool, trigger.NewTokenCache(httpClient), httpClient, cfg.TriggerTimeout, logger)
	w.RegisterActivity(activity.NewTrigger(executor))

	var archiver retention.Archiver
	if cfg.ArchiveBucket != "" {
		s3Client := retention.NewS3Client(cfg.ArchiveEndpoint, cfg.ArchiveRegion, cfg.ArchiveAccessKey, cfg.ArchiveSecretKey)
		archiver = retention.NewS3Archiver(s3Client, cfg.ArchiveBucket, logger)
		logger.Info().Str("bucket", cfg.ArchiveBucket).Msg("execution archiving enabled")
	}
	collector := retention.NewCollector(pool, cfg.RetentionMinAge, cfg.RetentionMinKept, archiver, logger)
	w.RegisterActivity(activity.NewMaintenance(collector))

	// Register workflows
	w.RegisterWorkflow(workflow.TriggerCronjobWorkflow)
	w.RegisterWorkflow(workflow.CleanupExecutionsWorkflow)

	if cfg.MetricsAddr != "" {
		metrics.RegisterPgxPoolMetrics(pool)
		metricsSrv := metrics.NewServer(cfg.MetricsAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("taskQueue", taskQueue).Msg("starting temporal worker")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("worker failed")
		}
	}()

	sched := scheduler.NewTemporal(tc, taskQueue, workflow.TriggerCronjobWorkflowName, cfg.ScheduleTimezone)

	// Register cron schedules. Errors for already-existing schedules are
	// ignored so that re-deploys do not fail.
	registerCronSchedules(ctx, tc, taskQueue, cfg, logger)

	// Re-register every enabled cronjob so that schedules survive a wiped
	// Temporal namespace. The database is the source of truth.
	resyncCtx, resyncCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer resyncCancel()
	services := core.NewServices(pool, sched, sched)
	count, err := services.Registration.Resync(resyncCtx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resync cronjob schedules")
	} else {
		logger.Info().Int("count", count).Msg("resynced cronjob schedules")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")
	cancel()
}

type cronSchedule struct {
	id       string
	cron     string
	workflow interface{}
	args     []interface{}
}

func registerCronSchedules(ctx context.Context, tc temporalclient.Client, taskQueue string, cfg *config.Config, logger zerolog.Logger) {
	schedules := []cronSchedule{
		{
			id:       "execution-retention-cron",
			cron:     cfg.RetentionCron,
			workflow: workflow.CleanupExecutionsWorkflow,
		},
	}

	scheduleClient := tc.ScheduleClient()

	for _, s := range schedules {
		_, err := scheduleClient.Create(ctx, temporalclient.ScheduleOptions{
			ID: s.id,
			Spec: temporalclient.ScheduleSpec{
				CronExpressions: []string{s.cron},
			},
			Action: &temporalclient.ScheduleWorkflowAction{
				ID:        s.id,
				Workflow:  s.workflow,
				Args:      s.args,
				TaskQueue: taskQueue,
			},
		})
		if err != nil {
			if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "AlreadyExists") || strings.Contains(err.Error(), "already registered") {
				logger.Info().Str("id", s.id).Msg("cron schedule already exists, skipping")
			} else {
				logger.Fatal().Err(err).Str("id", s.id).Msg("failed to create cron schedule")
			}
		} else {
			logger.Info().Str("id", s.id).Str("cron", s.cron).Msg("created cron schedule")
		}
	}
}
