package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver/ortoolscp"
	"github.com/meridianhire/panelsched/internal/scheduling/infrastructure/cpsolver/plugin"
	"github.com/meridianhire/panelsched/internal/scheduling/jobqueue"
	"github.com/meridianhire/panelsched/internal/shared/infrastructure/eventbus"
	"github.com/meridianhire/panelsched/pkg/config"
	"github.com/meridianhire/panelsched/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting panelsched worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis")
	repo := jobqueue.NewRedisRepository(redisClient)

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Error("failed to connect publisher to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	factory, closePlugin, err := solverFactory(cfg.SolverPluginPath, logger)
	if err != nil {
		logger.Error("failed to load solver backend", "error", err)
		os.Exit(1)
	}
	if closePlugin != nil {
		defer closePlugin.Close()
	}

	registry := eventbus.NewConsumerRegistry(logger)
	driver := services.NewSolverDriver(factory, logger, services.SolverDriverConfig{
		CircuitBreakerEnabled: cfg.CircuitBreakerEnabled,
		MaxRequests:           1,
		Interval:              10 * time.Second,
		Timeout:               cfg.CircuitBreakerTimeout,
		FailureThreshold:      uint32(cfg.CircuitBreakerFailureLimit),
	})
	consumer := jobqueue.NewConsumer(services.NewInstanceBuilder(), driver, repo, publisher, logger)

	rmqConsumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       cfg.RabbitMQURL,
		QueueName: "panelsched.solve.worker",
		Logger:    logger,
	}, registry)
	if err != nil {
		logger.Error("failed to connect consumer to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rmqConsumer.Close()
	rmqConsumer.RegisterConsumer(consumer)

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, redisClient, logger)
	}

	logger.Info("worker ready, consuming solve jobs")
	if err := rmqConsumer.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped")
}

// solverFactory returns the in-process OR-Tools backend unless
// pluginPath names an out-of-process go-plugin binary, in which case it
// loads that instead. The returned io.Closer is nil in the in-process
// case; callers only need to defer-close it when non-nil.
func solverFactory(pluginPath string, logger *slog.Logger) (cpsolver.Factory, io.Closer, error) {
	if pluginPath == "" {
		return ortoolscp.NewFactory(), nil, nil
	}
	return plugin.Load(pluginPath, logger)
}

func startHealthServer(ctx context.Context, addr string, redisClient *redis.Client, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(checkCtx).Err(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "not_ready", "error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
