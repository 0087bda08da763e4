package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/qhuube/vatreport/internal/catalog"
	"github.com/qhuube/vatreport/internal/config"
	"github.com/qhuube/vatreport/internal/core"
	"github.com/qhuube/vatreport/internal/ecb"
	"github.com/qhuube/vatreport/internal/logging"
	"github.com/qhuube/vatreport/internal/mail"
	"github.com/qhuube/vatreport/internal/session"
	"github.com/qhuube/vatreport/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"session_ttl", cfg.Session.TTL.String(),
		"mail_enabled", cfg.Mail.Token != "",
		"database_enabled", cfg.Database.URL != "",
	)

	ctx := context.Background()
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	// Without a database the service runs on the built-in field and rule
	// defaults; uploads still validate, enrichment reports every row as
	// needing manual review.
	var cat core.Catalog = &catalog.Static{}
	if cfg.Database.URL != "" {
		pool := mustConnect(ctx, cfg)
		defer pool.Close()

		repo := catalog.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare catalog schema", "error", err)
			os.Exit(1)
		}
		cat = repo

		if cfg.Rates.Enabled {
			refresher := ecb.NewRefresher(ecb.NewClient(cfg.Rates.APIURL), repo, ecb.Config{
				Currencies: cfg.Rates.Currencies,
				Interval:   cfg.Rates.Interval,
			})
			go refresher.Run(jobCtx)
		}
	} else if cfg.Rates.Enabled {
		slog.Warn("rate refresher disabled, no database configured")
	}

	var sender mail.Sender = mail.Disabled{}
	if cfg.Mail.Token != "" {
		sender = mail.NewClient(cfg.Mail.APIURL, cfg.Mail.Token, cfg.Mail.From)
	}

	service := core.NewService(cat)
	sessions := session.NewStore(cfg.Session.TTL)
	server := web.NewServer(service, sessions, sender, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// mustConnect builds the pgx pool from config and verifies connectivity.
func mustConnect(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool
}
