//go:build !gosseract

package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/receiptlens/receiptlens/internal/entity"
)

// GosseractEngine is only available when built with -tags gosseract.
type GosseractEngine struct{}

func NewGosseractEngine(cfg Config, logger *slog.Logger) (*GosseractEngine, error) {
	return nil, fmt.Errorf("gosseract engine unavailable: rebuild with -tags gosseract")
}

func (e *GosseractEngine) Recognize(ctx context.Context, img image.Image, languages string) ([]entity.Detection, error) {
	return nil, fmt.Errorf("gosseract engine unavailable: rebuild with -tags gosseract")
}
