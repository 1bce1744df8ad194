// Command courierlens runs the review-dashboard HTTP server. Records come
// from an upstream review service when COURIERLENS_UPSTREAM_URL is set,
// otherwise from Postgres via DATABASE_URL.
package main

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

	"github.com/joho/godotenv"

	"github.com/courierlens/courierlens/api"
	"github.com/courierlens/courierlens/internal/auth"
	"github.com/courierlens/courierlens/internal/config"
	"github.com/courierlens/courierlens/internal/dashboard"
	"github.com/courierlens/courierlens/internal/ratelimit"
	"github.com/courierlens/courierlens/internal/remote"
	"github.com/courierlens/courierlens/internal/server"
	"github.com/courierlens/courierlens/internal/storage"
	"github.com/courierlens/courierlens/internal/telemetry"
	"github.com/courierlens/courierlens/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("COURIERLENS_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("courierlens starting", "version", version, "port", cfg.Port)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, true)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Create JWT manager.
	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiration)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// Select the review source: upstream HTTP service when configured,
	// otherwise Postgres.
	var (
		source     dashboard.Source
		sourceName string
	)
	if cfg.UpstreamURL != "" {
		client, err := remote.NewClient(remote.Config{
			BaseURL: cfg.UpstreamURL,
			Timeout: cfg.UpstreamTimeout,
		})
		if err != nil {
			return fmt.Errorf("remote: %w", err)
		}
		source = client
		sourceName = "upstream"
		logger.Info("review source: upstream", "url", cfg.UpstreamURL)
	} else {
		db, err := storage.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx, migrations.FS); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}

		source = db
		sourceName = "postgres"
		logger.Info("review source: postgres")
	}

	// The dashboard's own fetches run as a read-only service identity; tag
	// mutations always carry the HTTP caller's credential instead.
	dash := dashboard.New(source, dashboard.Config{
		Logger:      logger,
		PageSize:    cfg.PageSize,
		QuietPeriod: cfg.DebounceInterval,
	})
	defer dash.Close()

	// Rate limit the token endpoint so API keys can't be brute-forced.
	var limiter ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer func() { _ = limiter.Close() }()
		logger.Info("rate limiting: memory (in-process token bucket)",
			"rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)
	} else {
		limiter = ratelimit.NoopLimiter{}
		logger.Info("rate limiting: disabled")
	}

	srv := server.New(server.ServerConfig{
		Dashboard:           dash,
		JWTMgr:              jwtMgr,
		Logger:              logger,
		AdminKeyHash:        cfg.AdminKeyHash,
		ViewerKeyHash:       cfg.ViewerKeyHash,
		RateLimiter:         limiter,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		SourceName:          sourceName,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		OpenAPISpec:         api.OpenAPISpec,
	})

	// Start HTTP server in background.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("courierlens shutting down")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := srv.Shutdown(httpCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	slog.Info("courierlens stopped")
	return nil
}
