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

	"github.com/gestornotas/gradebook/internal/gradebook"
	"github.com/gestornotas/gradebook/internal/live"
	"github.com/gestornotas/gradebook/internal/platform/cache"
	"github.com/gestornotas/gradebook/internal/platform/config"
	"github.com/gestornotas/gradebook/internal/platform/database"
	"github.com/gestornotas/gradebook/internal/scheme"
	"github.com/gestornotas/gradebook/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, checks, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open course store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	registry, err := gradebook.NewRegistry(ctx, store)
	if err != nil {
		slog.Error("failed to load courses", "error", err)
		os.Exit(1)
	}
	slog.Info("courses loaded", "count", len(registry.Courses()))

	var sheets *cache.SheetCache
	if cfg.UsesCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		sheets = cache.NewSheetCache(c, time.Duration(cfg.Cache.SheetTTLSec)*time.Second)
		checks = append(checks, c)
	}

	schemes, err := scheme.NewLoader(cfg.Schemes.Path)
	if err != nil {
		slog.Error("failed to load scheme templates", "error", err)
		os.Exit(1)
	}

	srv := server.New(registry, schemes, sheets, live.NewHub(), checks...)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
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

// buildStore picks Postgres when a database URL is configured, the JSON
// data file otherwise.
func buildStore(ctx context.Context, cfg *config.Config) (gradebook.Store, []server.HealthChecker, func(), error) {
	if cfg.UsesDatabase() {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, nil, err
		}
		store, err := gradebook.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		slog.Info("using postgres course store")
		return store, []server.HealthChecker{db}, db.Close, nil
	}

	path := cfg.Data.FilePath
	if path == "" {
		path = gradebook.DefaultDataPath()
	}
	store, err := gradebook.NewFileStore(path)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.Info("using file course store", "path", path)
	return store, nil, func() {}, nil
}

func setupLogging(cfg config.LogConfig) {
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
