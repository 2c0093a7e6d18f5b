package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/receiptlens/receiptlens/internal/async"
	"github.com/receiptlens/receiptlens/internal/auth"
	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/export"
	"github.com/receiptlens/receiptlens/internal/extract"
	"github.com/receiptlens/receiptlens/internal/ocr"
	"github.com/receiptlens/receiptlens/internal/pipeline"
	repo "github.com/receiptlens/receiptlens/internal/repository"
	"github.com/receiptlens/receiptlens/internal/server"
)

func main() {
	cfg := common.LoadConfig()

	var (
		addr     = flag.String("addr", cfg.Server.HTTPAddr, "HTTP listen address")
		driver   = flag.String("db", cfg.Database.Driver, "database driver (sqlite or postgres)")
		dsn      = flag.String("dsn", cfg.Database.DSN, "database DSN")
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	cfg.Database.Driver = *driver
	cfg.Database.DSN = *dsn
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	usersRepo := repo.NewUserRepository(db, logger)
	recordsRepo := repo.NewRecordRepository(db, logger)
	jobsRepo := repo.NewJobRepository(db, logger)

	sessions := auth.NewSessionStore(cfg.Server.SessionTTL)
	authSvc := auth.NewService(usersRepo, sessions, logger)

	// Periodically evict expired sessions.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Debug("swept expired sessions", "count", n)
				}
			}
		}
	}()

	engine := ocr.NewTesseractEngine(ocr.Config{
		Tesseract:        cfg.OCR.TesseractPath,
		Languages:        cfg.OCR.Languages,
		PSM:              cfg.OCR.PageSegMode,
		Timeout:          cfg.OCR.Timeout,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, ocr.NewExecRunner(), logger)

	ocrStage := pipeline.NewOCRStage(engine, cfg.OCR.Languages, logger)
	parseStage := pipeline.NewParseStage(
		extract.NewStandardExtractor(logger),
		extract.NewStructuredExtractor(logger),
		logger,
	)
	persistStage := pipeline.NewPersistStage(recordsRepo, logger)
	processor := pipeline.NewProcessor(logger, ocrStage, parseStage, persistStage, jobsRepo)

	queue := async.NewScanQueue(processor,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		async.WithLogger(logger),
	)

	exportSvc := export.NewService(recordsRepo, logger)

	srv := server.NewServer(server.Config{
		Auth:      authSvc,
		Processor: processor,
		Queue:     queue,
		Records:   recordsRepo,
		Jobs:      jobsRepo,
		Export:    exportSvc,
		DB:        db,
		Logger:    logger,
	})

	if err := srv.ListenAndServe(ctx, *addr); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		queue.Shutdown(context.Background())
		os.Exit(1)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
	logger.Info("stopped")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
