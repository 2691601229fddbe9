package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rolodex/internal/contact"
	"rolodex/internal/contact/events"
	contactmetrics "rolodex/internal/contact/metrics"
	"rolodex/internal/contact/seed"
	"rolodex/internal/contact/service"
	"rolodex/internal/contact/store"
	"rolodex/internal/platform/config"
	"rolodex/internal/platform/httpserver"
	"rolodex/internal/platform/metrics"
	"rolodex/internal/platform/postgres"
	"rolodex/internal/platform/redis"
	"rolodex/pkg/platform/circuit"
	"rolodex/pkg/platform/httputil"
)

// healthCheck reports whether a dependency is reachable.
type healthCheck func(ctx context.Context) error

// backend is the selected contact store and the resources behind it.
type backend struct {
	store  store.Store
	health healthCheck
	close  func()
}

func serve(ctx context.Context, cfg config.Server, log *slog.Logger, applySchema bool) error {
	be, err := openBackend(ctx, cfg, log, applySchema)
	if err != nil {
		return err
	}
	defer be.close()

	m := metrics.New()
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(contactmetrics.New(m.Registerer())),
	}

	checks := map[string]healthCheck{"store": be.health}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, events.WithLogger(log))
		if err != nil {
			return err
		}
		defer publisher.Close()
		if err := publisher.EnsureTopic(ctx, 3, 1); err != nil {
			return fmt.Errorf("ensure contact topic: %w", err)
		}
		guarded := events.NewGuarded(publisher, circuit.New("kafka", circuit.WithCooldown(30*time.Second)), log)
		opts = append(opts, service.WithPublisher(guarded))
		checks["kafka"] = publisher.Health
	}

	svc := contact.NewService(be.store, opts...)

	if cfg.SeedFile != "" {
		if _, err := seed.LoadFile(ctx, cfg.SeedFile, svc, log); err != nil {
			return err
		}
	}

	router := chi.NewRouter()
	router.Get("/healthz", healthHandler(checks, log))
	router.Method(http.MethodGet, "/metrics", m.Handler())
	contact.NewHandler(svc, log, m).Register(router)

	log.InfoContext(ctx, "starting rolodex", "backend", cfg.StoreBackend, "addr", cfg.Addr)
	return httpserver.Run(ctx, httpserver.New(cfg.Addr, router), cfg.ShutdownTimeout, log)
}

func openBackend(ctx context.Context, cfg config.Server, log *slog.Logger, applySchema bool) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if applySchema {
			if err := store.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return &backend{
			store:  store.NewPostgres(db),
			health: db.PingContext,
			close:  closer(log, "postgres", db),
		}, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  store.NewRedis(client.Client),
			health: client.Health,
			close:  func() { logClose(log, "redis", client.Close()) },
		}, nil

	default:
		return &backend{
			store:  store.NewInMemory(),
			health: func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	}
}

func closer(log *slog.Logger, name string, db *sql.DB) func() {
	return func() { logClose(log, name, db.Close()) }
}

func logClose(log *slog.Logger, name string, err error) {
	if err != nil {
		log.Warn("close failed", "resource", name, "error", err)
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthHandler(checks map[string]healthCheck, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			err := check(r.Context())
			if err == nil {
				resp.Checks[name] = "ok"
				continue
			}
			if !errors.Is(err, context.Canceled) {
				log.WarnContext(r.Context(), "health check failed", "check", name, "error", err)
			}
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
