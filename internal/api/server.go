package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/cronhook/internal/api/handler"
	mw "github.com/edvin/cronhook/internal/api/middleware"
	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/scheduler"
)

//go:embed docs/swagger.json
var swaggerJSON []byte

type Server struct {
	router         chi.Router
	logger         zerolog.Logger
	services       *core.Services
	pool           *pgxpool.Pool
	temporalClient temporalclient.Client
	cfg            *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, temporalClient temporalclient.Client, sched *scheduler.Temporal, cfg *config.Config) *Server {
	services := core.NewServices(pool, sched, sched)

	s := &Server{
		router:         chi.NewRouter(),
		logger:         logger,
		services:       services,
		pool:           pool,
		temporalClient: temporalClient,
		cfg:            cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// API documentation
	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerJSON)
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		// Config templates
		configTemplate := handler.NewConfigTemplate(s.services.ConfigTemplate)
		r.Get("/config-templates", configTemplate.List)
		r.Post("/config-templates", configTemplate.Create)
		r.Get("/config-templates/{id}", configTemplate.Get)
		r.Put("/config-templates/{id}", configTemplate.Update)
		r.Delete("/config-templates/{id}", configTemplate.Delete)

		// Projects
		project := handler.NewProject(s.services.Project)
		r.Get("/projects", project.List)
		r.Post("/projects", project.Create)
		r.Get("/projects/{id}", project.Get)
		r.Put("/projects/{id}", project.Update)
		r.Delete("/projects/{id}", project.Delete)

		// Cronjobs
		cronjob := handler.NewCronjob(s.services)
		r.Get("/projects/{projectID}/cronjobs", cronjob.ListByProject)
		r.Post("/projects/{projectID}/cronjobs", cronjob.Create)
		r.Get("/cronjobs/{id}", cronjob.Get)
		r.Put("/cronjobs/{id}", cronjob.Update)
		r.Delete("/cronjobs/{id}", cronjob.Delete)
		r.Post("/cronjobs/{id}/enable", cronjob.Enable)
		r.Post("/cronjobs/{id}/disable", cronjob.Disable)
		r.Post("/cronjobs/{id}/trigger", cronjob.Trigger)

		// Executions
		execution := handler.NewExecution(s.services)
		r.Get("/cronjobs/{cronjobID}/executions", execution.ListByCronjob)
		r.Get("/executions/{id}", execution.Get)
		r.Post("/executions/{id}/statuses", execution.AppendStatus)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	if _, err := s.temporalClient.CheckHealth(ctx, &temporalclient.CheckHealthRequest{}); err != nil {
		checks["temporal"] = err.Error()
		healthy = false
	} else {
		checks["temporal"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Cronhook API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
