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

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"scheme-workers/internal/common/camunda"
	"scheme-workers/internal/common/config"
	"scheme-workers/internal/common/database"
	"scheme-workers/internal/common/logger"
	"scheme-workers/internal/common/observability"
	"scheme-workers/pkg/eligibility"

	// Catalog Workers (2)
	qs "scheme-workers/internal/workers/catalog/query-schemes"
	ss "scheme-workers/internal/workers/catalog/search-schemes"

	// Eligibility Workers (2)
	ce "scheme-workers/internal/workers/eligibility/check-eligibility"
	rs "scheme-workers/internal/workers/eligibility/rank-schemes"

	// Profile & Notification Workers (2)
	sr "scheme-workers/internal/workers/notification/send-report"
	pp "scheme-workers/internal/workers/profile/parse-profile"
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

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	tracing, err := observability.NewTracing(cfg.App.Name, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
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

	// --- Init Elasticsearch with retry ---
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

	// --- Register Workers ---
	var jobWorkers []*camunda.CamundaWorker

	// --- 1. Profile Worker ---
	if cfg.Workers[pp.TaskType].Enabled {
		handler := pp.NewHandler(
			&pp.Config{
				Timeout: time.Duration(cfg.Workers[pp.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, pp.TaskType, cfg.Workers[pp.TaskType], handler.Handle, zapLog))
	}

	// --- 2. Catalog Workers ---
	if cfg.Workers[qs.TaskType].Enabled {
		handler := qs.NewHandler(
			&qs.Config{
				Timeout: time.Duration(cfg.Workers[qs.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, qs.TaskType, cfg.Workers[qs.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[ss.TaskType].Enabled {
		handler := ss.NewHandler(
			&ss.Config{
				Timeout:      time.Duration(cfg.Workers[ss.TaskType].Timeout) * time.Millisecond,
				DefaultIndex: cfg.Search.Index,
			},
			esClient.Client, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, ss.TaskType, cfg.Workers[ss.TaskType], handler.Handle, zapLog))
	}

	// --- 3. Eligibility Workers ---
	if cfg.Workers[ce.TaskType].Enabled {
		handler := ce.NewHandler(
			&ce.Config{
				Timeout:     time.Duration(cfg.Workers[ce.TaskType].Timeout) * time.Millisecond,
				CacheTTL:    time.Duration(cfg.Eligibility.CacheTTL) * time.Second,
				CatalogPath: cfg.Eligibility.CatalogPath,
				Weights: eligibility.ScoreWeights{
					All: cfg.Eligibility.Scoring.MandatoryWeight,
					Any: cfg.Eligibility.Scoring.OptionalWeight,
				},
			},
			pg.DB, redis.Client, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, ce.TaskType, cfg.Workers[ce.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[rs.TaskType].Enabled {
		handler := rs.NewHandler(
			&rs.Config{
				MaxItems:          cfg.Search.MaxItems,
				Timeout:           time.Duration(cfg.Workers[rs.TaskType].Timeout) * time.Millisecond,
				EligibilityWeight: cfg.Search.EligibilityWeight,
				RelevanceWeight:   cfg.Search.RelevanceWeight,
			},
			log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, rs.TaskType, cfg.Workers[rs.TaskType], handler.Handle, zapLog))
	}

	// --- 4. Notification Worker ---
	if cfg.Workers[sr.TaskType].Enabled {
		handler, err := sr.NewHandlerFromAWS(ctx,
			&sr.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				SenderID:     cfg.Notifications.SMS.SenderID,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[sr.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-report handler", zap.Error(err))
		}
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, sr.TaskType, cfg.Workers[sr.TaskType], handler.Handle, zapLog))
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

	for _, w := range jobWorkers {
		if w != nil {
			w.Close()
		}
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.HandlerFunc, log *zap.Logger) *camunda.CamundaWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return camunda.NewWorker(
		client,
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handlerFunc,
		log,
	)
}
