package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/auth"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/config"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/events"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/jobs"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/ledger"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/matching"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/orchestrator"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/profiles"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/proposals"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/router"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Ledger
	ledgerRepo := ledger.NewRepository(pool)
	ledgerSvc := ledger.NewService(ledgerRepo)

	// Jobs and proposals
	jobsRepo := jobs.NewRepository(pool)
	jobsSvc := jobs.NewService(jobsRepo)

	proposalsRepo := proposals.NewRepository(pool)
	proposalsSvc := proposals.NewService(proposalsRepo, jobsSvc)

	// Lifecycle events: insert func is set after the River client is created
	// (breaks init cycle).
	var insertMu sync.Mutex
	var insertFn orchestrator.InsertJobEventTxFunc
	insertJobEvent := func(ctx context.Context, tx pgx.Tx, args events.JobEventArgs) error {
		insertMu.Lock()
		fn := insertFn
		insertMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, tx, args)
	}

	lifecycleSvc := orchestrator.NewService(jobsSvc, proposalsRepo, ledgerSvc, ledgerRepo, insertJobEvent)

	eventsRepo := events.NewRepository(pool)
	workers := river.NewWorkers()
	river.AddWorker(workers, events.NewJobEventWorker(eventsRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	insertMu.Lock()
	insertFn = func(ctx context.Context, tx pgx.Tx, args events.JobEventArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}
	insertMu.Unlock()

	// Auth and profiles
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.Auth.JWTSecret)

	profilesRepo := profiles.NewRepository(pool)
	profilesSvc := profiles.NewService(profilesRepo)

	// AI matching gateway. The provider URL may be unset in development; the
	// gateway then degrades every ranking to the unranked fallback.
	provider, err := matching.NewAIProvider(cfg.AI.ServiceURL, cfg.AI.RankTimeout())
	if err != nil {
		slog.Error("Failed to create AI provider", "error", err)
		os.Exit(1)
	}
	gateway := matching.NewGateway(jobsSvc, proposalsSvc, profilesSvc, provider, cfg.AI.RankTimeout(), logger)

	apiRouter := router.New(router.Handlers{
		Auth:      auth.NewHandler(authSvc, logger),
		Jobs:      jobs.NewHandler(jobsSvc, logger),
		Proposals: proposals.NewHandler(proposalsSvc, logger),
		Lifecycle: orchestrator.NewHandler(lifecycleSvc, jobsSvc, logger),
		Ledger:    ledger.NewHandler(ledgerSvc, logger),
		Profiles:  profiles.NewHandler(profilesSvc, logger),
		Matching:  matching.NewHandler(gateway),
		Events:    events.NewHandler(eventsRepo, logger),
	}, authSvc)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, `{"status":"degraded"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	// Start River client (processes lifecycle events)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port)
	slog.Info("Starting HTTP server", "addr", addr)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
