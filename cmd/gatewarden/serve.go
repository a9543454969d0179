// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatewarden/gatewarden/internal/account"
	accountpg "github.com/gatewarden/gatewarden/internal/account/postgres"
	"github.com/gatewarden/gatewarden/internal/audit"
	"github.com/gatewarden/gatewarden/internal/events"
	"github.com/gatewarden/gatewarden/internal/guard"
	"github.com/gatewarden/gatewarden/internal/logging"
	"github.com/gatewarden/gatewarden/internal/observability"
	"github.com/gatewarden/gatewarden/internal/ratelimit"
	"github.com/gatewarden/gatewarden/internal/store"
	"github.com/gatewarden/gatewarden/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication service",
		Long: `Start the authentication service: connect to PostgreSQL and Redis,
expose metrics and health probes, and hold the session-guard stack ready
for the game server's connection handlers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	defaults := defaultServeConfig()
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("redis-addr", "", "Redis address for registration rate limiting (empty = in-memory)")
	cmd.Flags().String("metrics-addr", defaults.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", defaults.LogFormat, "log format (json or text)")
	cmd.Flags().String("log-level", defaults.LogLevel, "minimum log level (debug, info, warn, error)")
	cmd.Flags().Bool("auto-migrate", false, "apply pending database migrations on startup")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadServeConfig(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("gatewarden", version, logging.Options{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})
	logger := slog.Default()

	logger.InfoContext(ctx, "starting gatewarden",
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	if cfg.AutoMigrate {
		if err := autoMigrate(cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.InfoContext(ctx, "connected to database")

	var limiter ratelimit.Limiter
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() {
			if err := redisClient.Close(); err != nil {
				errutil.LogError(logger, "redis close failed", err)
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return oops.Code("REDIS_CONNECT_FAILED").With("addr", cfg.RedisAddr).Wrap(err)
		}
		limiter = ratelimit.NewRedisLimiter(redisClient)
		logger.InfoContext(ctx, "connected to redis", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryLimiter()
		logger.WarnContext(ctx, "redis not configured, registration rate limits are per-process")
	}

	accounts := accountpg.NewRepository(pool)
	bus := events.NewBus()

	auditLog := audit.Tee{
		audit.NewSlogLogger(logger),
		audit.NewPostgresLogger(pool, logger),
	}

	var obsServer *observability.Server
	var obsErrCh <-chan error
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return err
		}
		auditLog = append(auditLog, audit.NewMetricsLogger(obsServer.Metrics()))
	}

	sessions, err := guard.NewService(guard.Deps{
		Accounts: accounts,
		Hasher:   account.NewArgon2idHasher(),
		Limiter:  limiter,
		Audit:    auditLog,
		Bus:      bus,
		Logger:   logger,
	}, cfg.Guard)
	if err != nil {
		return err
	}
	// The game server's connection handlers call sessions.Attach per
	// player; no transport ships in this binary.
	_ = sessions

	logger.InfoContext(ctx, "gatewarden ready",
		"force_register", cfg.Guard.ForceRegister,
		"max_login_attempts", cfg.Guard.MaxLoginAttempts,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.InfoContext(ctx, "shutting down", "signal", sig.String())
	case err := <-obsErrCh:
		if err != nil {
			errutil.LogError(logger, "observability server failed", err)
		}
	case <-ctx.Done():
	}

	if obsServer != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := obsServer.Stop(stopCtx); err != nil {
			errutil.LogError(logger, "observability server stop failed", err)
		}
	}

	return nil
}

func autoMigrate(databaseURL string, logger *slog.Logger) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			errutil.LogError(logger, "migrator close failed", err)
		}
	}()

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		logger.Info("database schema up to date")
		return nil
	}

	logger.Info("applying migrations", "pending", len(pending))
	if err := migrator.Up(); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}
