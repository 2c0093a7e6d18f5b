package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/internal/entity"
)

// TesseractEngine shells out to the tesseract binary in TSV mode. This is the
// default engine; it needs no cgo, only a tesseract install on PATH.
type TesseractEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewTesseractEngine builds the subprocess-backed engine. A nil runner selects
// the real os/exec runner; tests inject a stub.
func NewTesseractEngine(cfg Config, runner Runner, logger *slog.Logger) *TesseractEngine {
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractEngine{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// Recognize writes the image to the artifact cache, runs tesseract in TSV mode
// and parses word-level detections out of the output.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, languages string) ([]entity.Detection, error) {
	if languages == "" {
		languages = e.cfg.Languages
	}
	if err := ValidateLanguages(languages); err != nil {
		return nil, err
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	path, cleanup, err := e.writeArtifact(img)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	args := []string{path, "stdout", "-l", languages}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract TSV: %w (stderr: %s)", err, truncate(string(errb), 512))
	}

	dets := parseTSV(string(out))
	e.logger.Debug("tesseract recognize done", "languages", languages, "detections", len(dets))
	return dets, nil
}

func (e *TesseractEngine) writeArtifact(img image.Image) (string, func(), error) {
	dir := e.cfg.ArtifactCacheDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("artifact dir: %w", err)
	}
	path := filepath.Join(dir, "scan-"+uuid.NewString()+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("artifact create: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("artifact encode: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("artifact close: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil {
			e.logger.Warn("artifact cleanup failed", "path", path, "error", err)
		}
	}
	return path, cleanup, nil
}

// parseTSV extracts word rows from tesseract TSV output. Columns are
// level, page, block, par, line, word, left, top, width, height, conf, text;
// structural rows carry conf -1 and are skipped.
func parseTSV(out string) []entity.Detection {
	lines := strings.Split(out, "\n")
	dets := make([]entity.Detection, 0, len(lines))
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		left, _ := strconv.Atoi(cols[6])
		top, _ := strconv.Atoi(cols[7])
		width, _ := strconv.Atoi(cols[8])
		height, _ := strconv.Atoi(cols[9])
		dets = append(dets, entity.Detection{
			Text:       text,
			Confidence: conf / 100.0,
			Box:        entity.Box{Left: left, Top: top, Width: width, Height: height},
		})
	}
	return dets
}
