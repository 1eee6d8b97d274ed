package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/upskilleo/learning-engine/internal/api"
	"github.com/upskilleo/learning-engine/internal/catalog"
	"github.com/upskilleo/learning-engine/internal/events"
	"github.com/upskilleo/learning-engine/internal/grading"
	"github.com/upskilleo/learning-engine/internal/platform/cache"
	"github.com/upskilleo/learning-engine/internal/platform/config"
	"github.com/upskilleo/learning-engine/internal/platform/database"
	"github.com/upskilleo/learning-engine/internal/purchases"
	"github.com/upskilleo/learning-engine/internal/session"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cat, err := catalog.NewLoader(cfg.Content.Path)
	if err != nil {
		slog.Error("failed to load course catalog", "path", cfg.Content.Path, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "path", cfg.Content.Path, "courses", len(cat.AllCourses()))

	// Event log: Postgres when a database URL is configured, no-op otherwise.
	var eventLog events.Logger = events.NopLogger{}
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		eventLog = events.NewPostgresLogger(db.Pool)
		slog.Info("event log backed by postgres")
	}

	// Purchase store: Redis when a cache URL is configured, in-memory otherwise.
	var store purchases.Store = purchases.NewMemoryStore()
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		store = purchases.NewRedisStore(c.Client)
		slog.Info("purchase store backed by redis")
	}

	svc := purchases.NewService(purchases.ServiceConfig{
		Store:           store,
		Catalog:         cat,
		Events:          eventLog,
		Notifier:        session.SlogNotifier{},
		ProcessingDelay: time.Duration(cfg.Purchase.ProcessingDelayMS) * time.Millisecond,
	})

	srv := api.NewServer(cat, svc, eventLog, api.SessionDefaults{
		Grader:              newGrader(cfg.Grading),
		PollInterval:        time.Duration(cfg.Playback.PollIntervalMS) * time.Millisecond,
		Tolerance:           cfg.Playback.ToleranceSeconds,
		FeedbackResumeDelay: time.Duration(cfg.Playback.FeedbackResumeSeconds) * time.Second,
		AutoAdvanceDelay:    time.Duration(cfg.Playback.AutoAdvanceSeconds) * time.Second,
	})
	defer srv.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(allowedOrigins()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func newGrader(cfg config.GradingConfig) grading.Grader {
	if cfg.Mode == "fuzzy" {
		return grading.NewFuzzyGrader(cfg.MaxDistance)
	}
	return grading.NewFirstLineGrader()
}

func allowedOrigins() []string {
	if v := os.Getenv("UPSKILLEO_CORS_ORIGINS"); v != "" {
		return strings.Split(v, ",")
	}
	return nil
}
