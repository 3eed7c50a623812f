package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signet/internal/compliance"
	"signet/internal/device"
	"signet/internal/platform/config"
	"signet/internal/platform/httpserver"
	"signet/internal/platform/logger"
	"signet/internal/platform/postgres"
	platformredis "signet/internal/platform/redis"
	"signet/internal/verification"
	verifyhandler "signet/internal/verification/handler"
	verifymetrics "signet/internal/verification/metrics"
	"signet/internal/verification/store"
	audit "signet/pkg/platform/audit"
	auditkafka "signet/pkg/platform/audit/kafka"
	auditmemory "signet/pkg/platform/audit/store/memory"
	auditworker "signet/pkg/platform/audit/worker"
	authmw "signet/pkg/platform/middleware/auth"
	"signet/pkg/platform/middleware/metadata"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build verification service", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	validator, err := authmw.NewHS256Validator(cfg.JWTSigningKey)
	if err != nil {
		log.Error("failed to build token validator", "error", err)
		os.Exit(1)
	}

	handler := verifyhandler.New(svc, device.NewService(cfg.DeviceFingerprinting), log)

	router := chi.NewRouter()
	router.Use(metadata.ClientMetadata)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authmw.RequireAuth(validator, log))
		handler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting signet verification service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// buildService assembles the verification service from the configured
// backends, falling back to in-memory equivalents when one is absent.
func buildService(ctx context.Context, cfg config.Server, log *slog.Logger) (*verification.Service, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	standards, err := compliance.LoadOrDefault(cfg.StandardsFile)
	if err != nil {
		return nil, cleanup, err
	}
	evaluator, err := compliance.NewEvaluator(standards)
	if err != nil {
		return nil, cleanup, err
	}

	m := verifymetrics.New()
	engine := verification.NewEngine(
		verification.WithEngineMetrics(m),
		verification.WithCheckTimeout(cfg.CheckTimeout),
	)

	opts := []verification.Option{
		verification.WithLogger(log),
		verification.WithMetrics(m),
	}

	db, err := postgres.New(cfg.PostgresURL)
	if err != nil {
		return nil, cleanup, err
	}
	if db != nil {
		cleanups = append(cleanups, func() { _ = db.Close() })
		opts = append(opts, verification.WithStore(store.NewPostgres(db)))
		log.Info("verification results persisted to postgres")
	} else {
		opts = append(opts, verification.WithStore(store.NewInMemory()))
		log.Info("postgres not configured, using in-memory result store")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, cleanup, err
	}
	if redisClient != nil {
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		opts = append(opts, verification.WithCache(store.NewRedisCache(redisClient.Client, cfg.Redis.CacheTTL)))
	}

	var sink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := auditkafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, auditkafka.WithLogger(log))
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, kafkaSink.Close)

		// Broker acknowledgement happens off the request path.
		queue := auditworker.NewQueue(cfg.Kafka.QueueSize)
		go auditworker.NewWorker(queue, kafkaSink, log).Run(ctx)
		sink = queue
	} else {
		sink = auditmemory.New()
		log.Info("kafka not configured, audit trail kept in memory")
	}
	opts = append(opts, verification.WithAudit(audit.NewPublisher(sink)))

	svc, err := verification.New(engine, evaluator, opts...)
	if err != nil {
		return nil, cleanup, err
	}
	return svc, cleanup, nil
}
