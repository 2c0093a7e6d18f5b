package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/imaging"
	"github.com/receiptlens/receiptlens/internal/ocr"
)

// OCRStage decodes the source image, assesses quality, renders the
// preprocessing variants and pools every variant's detections.
type OCRStage struct {
	Engine    ocr.Engine
	Languages string
	Logger    *slog.Logger
}

func NewOCRStage(engine ocr.Engine, languages string, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	if languages == "" {
		languages = "eng"
	}
	return &OCRStage{Engine: engine, Languages: languages, Logger: logger}
}

// OCROutput bundles the pooled detections with image metadata.
type OCROutput struct {
	Detections  []entity.Detection
	Quality     imaging.Stats
	ContentHash string // hex sha256 of the file body
}

// Run OCRs every preprocessing variant of the file. A variant failure is
// logged and skipped; when any variant fails, the plain grayscale image is
// run once as a replacement. Only a total OCR failure is an error.
func (s *OCRStage) Run(ctx context.Context, path string) (*OCROutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	sum := sha256.Sum256(data)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	gray := imaging.Normalize(img)
	stats := imaging.Assess(gray)

	out := &OCROutput{
		Quality:     stats,
		ContentHash: hex.EncodeToString(sum[:]),
	}

	failures := 0
	for _, v := range imaging.Variants(gray) {
		dets, err := s.Engine.Recognize(ctx, v.Image, s.Languages)
		if err != nil {
			failures++
			s.Logger.Error("variant ocr failed", "variant", v.Name, "source_path", path, "error", err)
			continue
		}
		for i := range dets {
			dets[i].Variant = v.Name
		}
		s.Logger.Debug("variant ocr finished", "variant", v.Name, "detections", len(dets))
		out.Detections = append(out.Detections, dets...)
	}

	if failures > 0 {
		dets, err := s.Engine.Recognize(ctx, gray, s.Languages)
		if err != nil {
			if len(out.Detections) == 0 {
				return nil, fmt.Errorf("ocr failed on every variant: %w", err)
			}
			s.Logger.Error("grayscale fallback failed", "source_path", path, "error", err)
		} else {
			for i := range dets {
				dets[i].Variant = imaging.VariantOriginal
			}
			s.Logger.Debug("grayscale fallback finished", "detections", len(dets))
			out.Detections = append(out.Detections, dets...)
		}
	}

	s.Logger.Info("ocr stage finished",
		"source_path", path,
		"detections", len(out.Detections),
		"failed_variants", failures,
		"quality", stats.Score)
	return out, nil
}
