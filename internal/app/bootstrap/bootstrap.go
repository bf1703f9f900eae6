package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	authorization "gatekeeper/contexts/identity-access/authorization-gate"
	githubadapter "gatekeeper/contexts/identity-access/authorization-gate/adapters/github"
	"gatekeeper/contexts/identity-access/authorization-gate/adapters/memory"
	postgresadapter "gatekeeper/contexts/identity-access/authorization-gate/adapters/postgres"
	"gatekeeper/contexts/identity-access/authorization-gate/application/workers"
	"gatekeeper/contexts/identity-access/authorization-gate/ports"
	"gatekeeper/internal/platform/config"
	"gatekeeper/internal/platform/db"
	"gatekeeper/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const shutdownTimeout = 10 * time.Second

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	sweeper       workers.SessionSweeper
	sweepInterval time.Duration
	logger        *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	var (
		pg       *db.Postgres
		sessions ports.SessionStore
	)
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Warn("POSTGRES_DSN not set, using in-memory sessions",
			"event", "bootstrap_memory_sessions",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		sessions = memory.NewStore()
	} else {
		pg, err = db.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if err := repo.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		sessions = repo
	}

	oracle := githubadapter.NewOracle(githubadapter.Config{
		BaseURL:  cfg.GitHubAPIBaseURL,
		Timeout:  cfg.GitHubTimeout,
		RetryMax: cfg.GitHubRetryMax,
		Logger:   logger,
	})

	module, err := authorization.NewModule(authorization.Dependencies{
		Oracle:      oracle,
		Sessions:    sessions,
		Clock:       postgresadapter.SystemClock{},
		AdminUserID: cfg.AdminUserID,
		Logger:      logger,
	})
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	server, err := httpserver.New(module, httpserver.Options{
		Addr:               normalizeAddr(cfg.HTTPPort),
		Organization:       cfg.GitHubOrganization,
		SessionCookieName:  cfg.SessionCookieName,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RequestTimeout:     cfg.RequestTimeout,
		EnableSwagger:      cfg.EnableSwagger,
		Clock:              postgresadapter.SystemClock{},
	}, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		sweeper: workers.SessionSweeper{
			Sessions: repo,
			Clock:    postgresadapter.SystemClock{},
			Logger:   logger,
		},
		sweepInterval: cfg.SessionSweepInterval,
		logger:        logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	interval := w.sweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", interval.String(),
	)

	for {
		if err := w.sweeper.RunOnce(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
