package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/receiptlens/receiptlens/internal/extract"
	"github.com/receiptlens/receiptlens/internal/ocr"
	"github.com/receiptlens/receiptlens/internal/pipeline"
)

func main() {
	var (
		lang       = flag.String("lang", "eng", "tesseract language spec, e.g. eng or eng+hin+mar")
		structured = flag.Bool("structured", true, "use layout-aware classification when geometry is available")
		logLevel   = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runscan [flags] <image-path>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	engine := ocr.NewTesseractEngine(ocr.Config{Languages: *lang}, ocr.NewExecRunner(), logger)

	var structuredExtractor *extract.StructuredExtractor
	if *structured {
		structuredExtractor = extract.NewStructuredExtractor(logger)
	}
	processor := pipeline.NewProcessor(logger,
		pipeline.NewOCRStage(engine, *lang, logger),
		pipeline.NewParseStage(extract.NewStandardExtractor(logger), structuredExtractor, logger),
		nil, // no store; result goes to stdout
		nil,
	)

	start := time.Now()
	res, err := processor.ProcessFile(ctx, path)
	if err != nil {
		logger.Error("scan failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	out := map[string]any{
		"title":      res.Record.Title,
		"date":       res.Record.Date,
		"amount":     res.Record.Amount,
		"currency":   res.Record.Currency,
		"raw_text":   res.Record.RawTextLines,
		"confidence": res.Confidence,
		"language":   res.Language,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encoding result: %v\n", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
