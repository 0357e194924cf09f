package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridianhire/panelsched/internal/scheduling/adapter/cli"
	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/audit"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cache"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver/ortoolscp"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver/plugin"
	"github.com/meridianhire/panelsched/internal/shared/infrastructure/database"
	"github.com/meridianhire/panelsched/pkg/config"
	"github.com/meridianhire/panelsched/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	cli.SetLogger(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development defaults", "error", err)
		cfg = &config.Config{AppEnv: "development", SolveMaxTimeSeconds: 60}
	}

	ctx := context.Background()

	factory := ortoolscp.NewFactory()
	if cfg.SolverPluginPath != "" {
		pluginFactory, closer, err := plugin.Load(cfg.SolverPluginPath, logger)
		if err != nil {
			logger.Warn("solver plugin unavailable, falling back to in-process backend", "error", err)
		} else {
			defer closer.Close()
			factory = pluginFactory
		}
	}

	driver := services.NewSolverDriver(factory, logger, solverDriverConfig(cfg))

	if auditLog := connectAuditLog(ctx, cfg, logger); auditLog != nil {
		driver.SetAuditLog(auditLog)
	}
	if resultCache := connectResultCache(cfg, logger); resultCache != nil {
		driver.SetResultCache(resultCache)
	}

	cli.SetApp(&cli.App{
		InstanceBuilder: services.NewInstanceBuilder(),
		SolverDriver:    driver,
	})

	cli.Execute()
}

func solverDriverConfig(cfg *config.Config) services.SolverDriverConfig {
	return services.SolverDriverConfig{
		CircuitBreakerEnabled: cfg.CircuitBreakerEnabled,
		MaxRequests:           1,
		Interval:              10 * time.Second,
		Timeout:               cfg.CircuitBreakerTimeout,
		FailureThreshold:      uint32(cfg.CircuitBreakerFailureLimit),
	}
}

// connectAuditLog establishes the optional audit trail
// (infrastructure/audit). A failure here never blocks solving — the CLI
// logs a warning and runs without persistence, since the audit log is an
// optional collaborator, not a dependency the solve path requires.
func connectAuditLog(ctx context.Context, cfg *config.Config, logger *slog.Logger) audit.SolveAuditLog {
	dbCfg := database.Config{Driver: database.Driver(cfg.DatabaseDriver), URL: cfg.DatabaseURL, SQLitePath: cfg.SQLitePath}
	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		logger.Warn("audit log unavailable, continuing without persistence", "error", err)
		return nil
	}
	auditLog, err := audit.NewSolveAuditLog(ctx, conn)
	if err != nil {
		logger.Warn("audit log schema setup failed, continuing without persistence", "error", err)
		return nil
	}
	logger.Info("audit log connected", "backend", conn.Driver().Label())
	return auditLog
}

// connectResultCache establishes the optional Redis result cache. Disabled
// unless the operator opted in via PANELSCHED_CACHE_ENABLED, since it
// requires a reachable Redis instance a plain CLI invocation shouldn't
// depend on by default.
func connectResultCache(cfg *config.Config, logger *slog.Logger) *cache.ResultCache {
	if !cfg.CacheEnabled {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid redis url, result cache disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opts)
	return cache.NewResultCache(client, cfg.CacheTTL)
}
