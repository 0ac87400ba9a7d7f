// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/eventhub/internal/cache"
	"github.com/olegiv/eventhub/internal/config"
	"github.com/olegiv/eventhub/internal/handler"
	"github.com/olegiv/eventhub/internal/logging"
	"github.com/olegiv/eventhub/internal/middleware"
	"github.com/olegiv/eventhub/internal/render"
	"github.com/olegiv/eventhub/internal/scheduler"
	"github.com/olegiv/eventhub/internal/service"
	"github.com/olegiv/eventhub/internal/session"
	"github.com/olegiv/eventhub/internal/store"
	"github.com/olegiv/eventhub/internal/version"
	"github.com/olegiv/eventhub/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "eventhub - event calendar with approval workflow\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTHUB_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTHUB_DB_PATH           SQLite database path (default: ./data/eventhub.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTHUB_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTHUB_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTHUB_REDIS_URL         Redis URL for the calendar cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DEFAULT_ADMIN_EMAIL        Bootstrap administrator email (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADMIN_PASSWORD             Bootstrap administrator password (optional)\n")
	}
	flag.Parse()

	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("eventhub %s (built: %s)\n", info, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	versionInfo := version.Get()

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(textHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// From here on, warnings and errors also land in the activity log.
	activity := service.NewActivityService(db)
	logger := slog.New(logging.NewActivityLogHandler(textHandler, activity))
	slog.SetDefault(logger)

	ctx := context.Background()
	users := store.NewUserRepository(db)
	events := store.NewEventRepository(db)

	if cfg.HasAdminBootstrap() {
		if _, err := store.BootstrapAdmin(ctx, users, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrapping admin: %w", err)
		}
	}

	sessionManager := session.New(db, session.Options{
		IsDev:       cfg.IsDevelopment(),
		IdleTimeout: cfg.SessionIdleTimeout,
	})

	calendarCache, backend := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CalendarCacheTTL,
	})
	defer func() { _ = calendarCache.Close() }()
	slog.Info("calendar cache initialized", "backend", backend)

	var cachePinger handler.Pinger
	if p, ok := calendarCache.(handler.Pinger); ok {
		cachePinger = p
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	calendar := service.NewCalendarService(events, calendarCache, cfg.CalendarCacheTTL)
	accounts := service.NewAccountService(users, activity)
	eventService := service.NewEventService(events, activity, calendar)
	approval := service.NewApprovalService(users, events, activity, calendar)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	sched := scheduler.New(logger)
	err = sched.RegisterMaintenance(scheduler.Maintenance{
		Activity:        activity,
		Retention:       cfg.ActivityRetention,
		Approval:        approval,
		RateLimiter:     rateLimiter,
		LoginProtection: loginProtection,
	})
	if err != nil {
		return fmt.Errorf("registering scheduled jobs: %w", err)
	}
	if err := approval.RefreshPendingGauges(ctx); err != nil {
		slog.Warn("failed to initialize pending gauges", "error", err)
	}
	sched.Start()
	defer sched.Stop()

	router := handler.NewRouter(handler.Deps{
		DB:              db,
		Sessions:        sessionManager,
		Renderer:        renderer,
		Users:           users,
		Accounts:        accounts,
		Events:          eventService,
		Approval:        approval,
		Calendar:        calendar,
		Activity:        activity,
		LoginProtection: loginProtection,
		RateLimiter:     rateLimiter,
		Cache:           cachePinger,
		Static:          staticFS,
		IsDev:           cfg.IsDevelopment(),
		CSRFKey:         []byte(cfg.SessionSecret),
		TrustedOrigins:  cfg.TrustedOrigins,
		MetricsEnabled:  cfg.MetricsEnabled,
		RequestLogging:  cfg.RequestLogging,
		SiteURL:         cfg.SiteURL,
		Version:         versionInfo,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      handler.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
