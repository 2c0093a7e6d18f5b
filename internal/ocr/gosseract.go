//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/receiptlens/receiptlens/internal/entity"
)

// GosseractEngine runs tesseract in-process through the gosseract cgo binding.
// Built only with -tags gosseract; the default build uses the subprocess engine.
type GosseractEngine struct {
	cfg    Config
	logger *slog.Logger
}

func NewGosseractEngine(cfg Config, logger *slog.Logger) (*GosseractEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &GosseractEngine{cfg: cfg.withDefaults(), logger: logger}, nil
}

func (e *GosseractEngine) Recognize(ctx context.Context, img image.Image, languages string) ([]entity.Detection, error) {
	if languages == "" {
		languages = e.cfg.Languages
	}
	if err := ValidateLanguages(languages); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer func() {
		_ = client.Close()
	}()

	if err := client.SetLanguage(strings.Split(languages, "+")...); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if e.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if e.cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(e.cfg.PSM)); err != nil {
			return nil, fmt.Errorf("set psm: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	dets := make([]entity.Detection, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		dets = append(dets, entity.Detection{
			Text:       word,
			Confidence: b.Confidence / 100.0,
			Box: entity.Box{
				Left:   b.Box.Min.X,
				Top:    b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
		})
	}
	e.logger.Debug("gosseract recognize done", "languages", languages, "detections", len(dets))
	return dets, nil
}
