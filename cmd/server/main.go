package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/config"
	"github.com/JonMunkholm/tcgmatch/internal/core"
	"github.com/JonMunkholm/tcgmatch/internal/logging"
	"github.com/JonMunkholm/tcgmatch/internal/metrics"
	"github.com/JonMunkholm/tcgmatch/internal/storage"
	"github.com/JonMunkholm/tcgmatch/internal/web"
)

// janitorInterval is how often expired conversion results are swept.
const janitorInterval = time.Minute

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"catalog_driver", cfg.Database.Driver,
		"catalog_max_params", cfg.Database.MaxParams,
		"convert_max_concurrent", cfg.Convert.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open catalog", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("connected to catalog", "driver", store.Driver(), "max_params", store.MaxParams())

	m := metrics.New(metrics.WithRuntimeMetrics())
	gateway := catalog.NewGateway(store, catalog.WithObserver(m.ObserveBatch))
	service := core.NewService(gateway, cfg.Convert, core.WithRecorder(m))

	server := web.NewServer(service, cfg,
		web.WithMetrics(m),
		web.WithHealthCheck(gateway),
	)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.RunJanitor(jobCtx, janitorInterval)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for running conversions to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for conversions to complete", "active", status.Active)
			if err := service.WaitForConversions(shutdownCtx); err != nil {
				slog.Warn("conversions did not complete in time", "error", err)
			} else {
				slog.Info("all conversions completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
