package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docsummary/internal/config"
	"docsummary/internal/database"
	"docsummary/internal/generator"
	"docsummary/internal/ratelimiter"
	"docsummary/internal/scheduler"
	"docsummary/internal/server"
	"docsummary/internal/summarizer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WarnContext(ctx, "Failed to load .env file",
			"error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	if err = os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.ErrorContext(ctx, "Failed to create upload dir",
			"error", err,
			"uploadDir", cfg.UploadDir)

		return
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	limiter := ratelimiter.New(cfg.RateLimitRPM, cfg.RateLimitBurst, log)
	defer limiter.Stop()
	log.InfoContext(ctx, "Rate limiter is initialized",
		"requestsPerMinute", cfg.RateLimitRPM,
		"burst", cfg.RateLimitBurst)

	gen, err := generator.New(ctx, cfg, limiter)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize generator",
			"error", err,
			"provider", cfg.Provider)

		return
	}
	log.InfoContext(ctx, "Generator is initialized",
		"provider", cfg.Provider)

	summ := summarizer.New(gen, summarizer.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		MaxBatchSize: cfg.MaxBatchSize,
	}, log)

	sched := scheduler.New(ctx, db, cfg.RetentionDays, log)
	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.DailyCleanupSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.DailyCleanupSpec,
		"retentionDays", cfg.RetentionDays)

	srv := server.New(cfg, db, summ, log)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Start()
	}()
	log.InfoContext(ctx, "HTTP server is started",
		"listenAddr", cfg.ListenAddr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-serverErrCh:
		if err != nil {
			log.ErrorContext(ctx, "HTTP server failed",
				"error", err,
				"listenAddr", cfg.ListenAddr)
		}

		return
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer shutdownCancel()

	if err = srv.Stop(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Failed to stop HTTP server",
			"error", err)
	}
	log.InfoContext(ctx, "HTTP server is stopped")
}
