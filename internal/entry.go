// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/feed"
	"github.com/starford/raido/internal/journal"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/notify"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sync_folder", cfg.Sync.Folder),
		slog.Duration("tick", cfg.Sync.Tick.Std()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists. The sync folder inside it is the
	// user's to create; a missing folder only skips cycles.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize cycle journal.
	jdb, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	defer jdb.Close()

	// SSE broker; notices fan out to the log and to connected UIs.
	broker := sse.NewBroker()
	defer broker.Close()

	notifier := notify.Multi{
		notify.Log{Logger: logger},
		notify.Func(func(n notify.Notice) {
			broker.Publish(sse.Event{Type: "notice", Data: n})
		}),
	}

	// Build the sync engine.
	fetcher := feed.NewFetcher(cfg.Sync.FetchTimeout.Std())
	orch := engine.NewOrchestrator(store, fetcher, notifier, logger, engine.Options{
		Folder:             cfg.Sync.Folder,
		Interval:           cfg.Sync.Interval.Std(),
		Lookback:           cfg.Sync.Lookback.Std(),
		MaxParallelFetches: cfg.Sync.MaxParallelFetches,
		Blacklist: engine.Blacklist{
			URLs:   cfg.Sync.Blacklist.URLs,
			Titles: cfg.Sync.Blacklist.Titles,
		},
	})
	runner := engine.NewRunner(orch, jdb, logger, cfg.Sync.Tick.Std(), nil)
	runner.OnCycle = func(sum models.CycleSummary) {
		broker.Publish(sse.Event{Type: "cycle", Data: sum})
	}

	// Build API router.
	h := api.NewHandler(runner, jdb)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	// A shutdown signal cancels the whole group.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Start the sync runner.
	g.Go(func() error {
		return runner.Run(gCtx)
	})

	// Watch the sync folder for user edits.
	g.Go(func() error {
		return watcher.Watch(gCtx, store.Root(), cfg.Sync.Folder, runner, logger)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shut the HTTP server down once the group context ends.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
