// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"teamfit-workers/internal/common/aws"
	"teamfit-workers/internal/common/camunda"
	"teamfit-workers/internal/common/config"
	"teamfit-workers/internal/common/database"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/repository"

	car "teamfit-workers/internal/workers/application/create-application-record"
	sn "teamfit-workers/internal/workers/application/send-notification"
	va "teamfit-workers/internal/workers/application/validate-application"
	qp "teamfit-workers/internal/workers/data-access/query-postgresql"
	cfs "teamfit-workers/internal/workers/team/calculate-fit-score"
	cl "teamfit-workers/internal/workers/team/classify-level"
	rps "teamfit-workers/internal/workers/team/rank-position-slots"
	sps "teamfit-workers/internal/workers/team/search-position-slots"
)

var connectRetry = &camunda.RetryConfig{
	MaxRetries: 15,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker manager: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting worker manager", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(observability.Options{
		ServiceName: "worker-manager",
		SampleRatio: cfg.Tracing.SampleRatio,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("observability init failed: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Warn("observability shutdown failed", map[string]interface{}{"error": err})
		}
	}()

	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.UsePlaintext,
		RetryConfig:            connectRetry,
	}, log)
	if err != nil {
		return err
	}
	defer zeebe.Close()
	log.Info("zeebe client connected", nil)

	var pg *database.PostgresClient
	err = camunda.Retry(ctx, connectRetry, log, "postgres connection", func(ctx context.Context) error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		return err
	}
	defer pg.Close()
	log.Info("postgres connected", nil)

	var redis *database.RedisClient
	err = camunda.Retry(ctx, connectRetry, log, "redis connection", func(ctx context.Context) error {
		var err error
		if redis, err = database.NewRedis(cfg.Database.Redis); err != nil {
			return err
		}
		return redis.Ping(ctx)
	})
	if err != nil {
		return err
	}
	defer redis.Close()
	log.Info("redis connected", nil)

	var es *database.ElasticsearchClient
	err = camunda.Retry(ctx, connectRetry, log, "elasticsearch connection", func(ctx context.Context) error {
		var err error
		if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
			return err
		}
		return es.Ping(ctx)
	})
	if err != nil {
		return err
	}
	log.Info("elasticsearch connected", nil)

	repo := repository.New(pg.DB, redis, cfg.Cache, log)

	workers, err := registerWorkers(ctx, cfg, zeebe, pg, repo, es, obs, log)
	if err != nil {
		return err
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	srv := newServer(cfg.Server.Address, zeebe, pg, redis)
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err})
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := obs.Flush(shutdownCtx); err != nil {
		log.Warn("span flush failed", map[string]interface{}{"error": err})
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("health/metrics server shutdown failed", map[string]interface{}{"error": err})
	}

	log.Info("worker manager stopped", nil)
	return nil
}

func registerWorkers(
	ctx context.Context,
	cfg *config.Config,
	zeebe *camunda.Client,
	pg *database.PostgresClient,
	repo *repository.Repository,
	es *database.ElasticsearchClient,
	obs *observability.Observability,
	log logger.Logger,
) ([]worker.JobWorker, error) {
	var workers []worker.JobWorker
	start := func(taskType string, handler worker.JobHandler) {
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log))
	}
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	if config.IsWorkerEnabled(cfg, qp.TaskType) {
		c := qp.LoadConfig()
		c.Timeout = timeout(qp.TaskType)
		start(qp.TaskType, qp.NewHandler(c, pg.DB, repo, obs, log).Handle)
	}

	if config.IsWorkerEnabled(cfg, cfs.TaskType) {
		c := cfs.LoadConfig()
		c.Timeout = timeout(cfs.TaskType)
		start(cfs.TaskType, cfs.NewHandler(c, repo, obs, log).Handle)
	}

	if config.IsWorkerEnabled(cfg, rps.TaskType) {
		c := rps.LoadConfig()
		c.Timeout = timeout(rps.TaskType)
		start(rps.TaskType, rps.NewHandler(c, repo, obs, log).Handle)
	}

	if config.IsWorkerEnabled(cfg, cl.TaskType) {
		c := cl.LoadConfig()
		c.Timeout = timeout(cl.TaskType)
		start(cl.TaskType, cl.NewHandler(c, obs, log).Handle)
	}

	if config.IsWorkerEnabled(cfg, sps.TaskType) {
		c := sps.LoadConfig()
		c.Index = cfg.Search.SlotIndex
		c.DefaultPageSize = cfg.Search.DefaultPageSize
		c.MaxPageSize = cfg.Search.MaxPageSize
		c.Timeout = timeout(sps.TaskType)
		start(sps.TaskType, sps.NewHandler(c, es.Client, obs, log).Handle)
	}

	if config.IsWorkerEnabled(cfg, va.TaskType) {
		c := va.LoadConfig()
		c.Timeout = timeout(va.TaskType)
		start(va.TaskType, va.NewHandler(c, repo, obs, log).Handle)
	}

	if config.IsWorkerEnabled(cfg, car.TaskType) {
		c := car.LoadConfig()
		c.Timeout = timeout(car.TaskType)
		start(car.TaskType, car.NewHandler(c, pg.DB, repo, obs, log).Handle)
	}

	if config.IsWorkerEnabled(cfg, sn.TaskType) {
		clients, err := aws.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("send-notification: %w", err)
		}
		c := sn.LoadConfig()
		c.EmailEnabled = cfg.Notifications.Email.Enabled
		c.FromEmail = cfg.Notifications.Email.FromEmail
		c.SMSEnabled = cfg.Notifications.SMS.Enabled
		if cfg.Notifications.SMS.PriorityThreshold != "" {
			c.SMSPriority = cfg.Notifications.SMS.PriorityThreshold
		}
		c.Timeout = timeout(sn.TaskType)
		start(sn.TaskType, sn.NewHandler(c, pg.DB, clients.SES, clients.SNS, obs, log).Handle)
	}

	return workers, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func newServer(addr string, zeebe *camunda.Client, deps ...pinger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := zeebe.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready", err.Error())
			return
		}
		for _, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "not_ready", err.Error())
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeStatus(w http.ResponseWriter, code int, status, detail string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if detail != "" {
		body["error"] = detail
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
