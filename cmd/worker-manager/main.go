// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"edumatch-workers/internal/catalog"
	"edumatch-workers/internal/common/camunda"
	"edumatch-workers/internal/common/config"
	"edumatch-workers/internal/common/database"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/common/observability"
	"edumatch-workers/internal/genai"
	"edumatch-workers/internal/matching"
	"edumatch-workers/internal/profile"

	qa "edumatch-workers/internal/workers/data-access/query-activities"
	ra "edumatch-workers/internal/workers/recommendation/rank-activities"
	sc "edumatch-workers/internal/workers/recommendation/score-activity"
	sa "edumatch-workers/internal/workers/recommendation/suggest-activities"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	tracing := observability.NewTracing(cfg.App.Name, cfg.Tracing.CollectorEndpoint)
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         30 * time.Second,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Catalog Store ---
	var store catalog.Store
	switch cfg.Catalog.Source {
	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		store = catalog.NewSearchStore(esClient.Client, cfg.Database.Elasticsearch.Index, log)
	case "file":
		fileStore, err := catalog.NewFileStore(cfg.Catalog.RegistryPath)
		if err != nil {
			zapLog.Fatal("failed to load activity registry", zap.Error(err))
		}
		store = fileStore
	default:
		store = catalog.NewPostgresStore(pg.DB, redis.Client, cfg.Catalog.GetCacheTTL(), log)
	}

	// --- Init Matching Engine ---
	params := matching.ParamsFromConfig(cfg.Matching)
	profiles := profile.NewStore(pg.DB, redis.Client, cfg.Catalog.GetCacheTTL(), log)

	var provider matching.SuggestionProvider
	if cfg.GenAI.Enabled {
		client, err := genai.NewClient(genai.Config{
			BaseURL:    cfg.GenAI.BaseURL,
			APIKey:     cfg.GenAI.APIKey,
			Timeout:    cfg.GenAI.GetTimeout(),
			MaxRetries: cfg.GenAI.MaxRetries,
		}, log)
		if err != nil {
			zapLog.Fatal("failed to create genai client", zap.Error(err))
		}
		provider = client
		zapLog.Info("External suggestion provider enabled",
			zap.String("baseUrl", cfg.GenAI.BaseURL),
			zap.Duration("timeout", cfg.GenAI.GetTimeout()),
		)
	} else {
		zapLog.Info("External suggestion provider disabled, local ranking only")
	}

	orchestrator := matching.NewOrchestrator(provider, params, cfg.GenAI.GetTimeout(), log).WithObservability(obs)

	// --- Register Workers ---
	var workers []*camunda.CamundaWorker

	if config.IsWorkerEnabled(cfg, sa.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, sa.TaskType)
		handler := sa.NewHandler(
			&sa.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			orchestrator, profiles, store, tracing, log,
		)
		workers = append(workers, startWorker(zeebeClient, sa.TaskType, wcfg, handler, zapLog))
	}

	if config.IsWorkerEnabled(cfg, ra.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ra.TaskType)
		handler := ra.NewHandler(
			&ra.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			params, log,
		)
		workers = append(workers, startWorker(zeebeClient, ra.TaskType, wcfg, handler, zapLog))
	}

	if config.IsWorkerEnabled(cfg, sc.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, sc.TaskType)
		handler := sc.NewHandler(
			&sc.Config{
				Timeout:  config.GetDuration(wcfg.Timeout),
				CacheTTL: cfg.Catalog.GetCacheTTL(),
			},
			params, profiles, log,
		)
		workers = append(workers, startWorker(zeebeClient, sc.TaskType, wcfg, handler, zapLog))
	}

	if config.IsWorkerEnabled(cfg, qa.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, qa.TaskType)
		handler := qa.NewHandler(
			&qa.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			store, log,
		)
		workers = append(workers, startWorker(zeebeClient, qa.TaskType, wcfg, handler, zapLog))
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	w := camunda.NewWorker(
		client.GetClient(),
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handler,
		log,
	)
	w.Start()
	return w
}
