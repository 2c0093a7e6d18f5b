package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/receiptlens/receiptlens/internal/async"
	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/export"
	"github.com/receiptlens/receiptlens/internal/extract"
	"github.com/receiptlens/receiptlens/internal/ingest"
	"github.com/receiptlens/receiptlens/internal/ocr"
	"github.com/receiptlens/receiptlens/internal/pipeline"
	repo "github.com/receiptlens/receiptlens/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir   = flag.String("dir", "", "directory to process receipts from (required)")
		watch = flag.Bool("watch", false, "keep watching the directory for new files")
		out   = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		lang  = flag.String("lang", "", "tesseract language spec, e.g. eng or eng+hin+mar")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "expenses.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.Driver = repo.DriverSQLite
		cfg.Database.DSN = "file::memory:?cache=shared"
	}
	if *lang != "" {
		cfg.OCR.Languages = *lang
	}

	db, err := repo.Open(ctx, repo.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	recordsRepo := repo.NewRecordRepository(db, logger)
	filesRepo := repo.NewFileRepository(db, logger)
	jobsRepo := repo.NewJobRepository(db, logger)

	engine := ocr.NewTesseractEngine(ocr.Config{
		Tesseract:        cfg.OCR.TesseractPath,
		Languages:        cfg.OCR.Languages,
		PSM:              cfg.OCR.PageSegMode,
		Timeout:          cfg.OCR.Timeout,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, ocr.NewExecRunner(), logger)

	processor := pipeline.NewProcessor(logger,
		pipeline.NewOCRStage(engine, cfg.OCR.Languages, logger),
		pipeline.NewParseStage(extract.NewStandardExtractor(logger), extract.NewStructuredExtractor(logger), logger),
		pipeline.NewPersistStage(recordsRepo, logger),
		jobsRepo,
	)

	queue := async.NewScanQueue(processor,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		async.WithLogger(logger),
	)

	ingestor := ingest.NewFSIngestor(filesRepo, logger)

	var enqueued, skipped atomic.Uint32

	// enqueueScan creates a job for path and hands it to the queue, backing
	// off while the buffer is busy.
	enqueueScan := func(path string) {
		job, err := jobsRepo.Create(ctx, path)
		if err != nil {
			logger.Error("failed to create scan job", "path", path, "error", err)
			return
		}
		task := async.Task{JobID: job.ID, SourcePath: path, SubmittedAt: time.Now()}
		for {
			err := queue.Enqueue(ctx, task)
			if err == nil {
				enqueued.Add(1)
				return
			}
			if err != async.ErrQueueFull {
				logger.Error("failed to enqueue scan", "path", path, "error", err)
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
		}
	}

	submit := func(path string) {
		res, err := ingestor.IngestPath(ctx, path)
		if err != nil {
			logger.Error("failed to ingest file", "path", path, "error", err)
			return
		}
		if res.Deduplicated {
			logger.Info("skipping duplicate", "path", path, "hash", res.HashHex)
			skipped.Add(1)
			return
		}
		enqueueScan(res.SourcePath)
	}

	logger.Info("starting ingestion", "dir", *dir)
	results, stats, err := ingestor.IngestDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	for _, res := range results {
		if res.Err != "" {
			continue
		}
		if res.Deduplicated {
			skipped.Add(1)
			continue
		}
		enqueueScan(res.SourcePath)
	}

	if *watch {
		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:    []string{*dir},
			Debounce: 500 * time.Millisecond,
		})
		if err != nil {
			logger.Error("failed to start watcher", "dir", *dir, "error", err)
			os.Exit(1)
		}
		logger.Info("watching for new receipts", "dir", *dir)

	watchLoop:
		for {
			select {
			case <-ctx.Done():
				break watchLoop
			case path, ok := <-events:
				if !ok {
					break watchLoop
				}
				submit(path)
			case werr, ok := <-errs:
				if ok && werr != nil {
					logger.Error("watch error", "error", werr)
				}
			}
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	queue.Shutdown(drainCtx)

	logger.Info("exporting to XLSX", "output", *out)
	exportSvc := export.NewService(recordsRepo, logger)
	if err := exportSvc.ExportToFile(context.Background(), *out, nil); err != nil {
		logger.Error("failed to export records", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files enqueued: %d\n", enqueued.Load())
	fmt.Printf("- Duplicates skipped: %d\n", skipped.Load())
	fmt.Printf("- Output: %s\n", *out)
}
