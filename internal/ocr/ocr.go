package ocr

import (
	"context"
	"image"
	"time"

	"github.com/receiptlens/receiptlens/internal/entity"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages string // tesseract language spec, e.g. "eng" or "eng+hin"; default "eng"

	TessdataDir string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	ArtifactCacheDir string

	Timeout time.Duration // per-image budget; 0 = none
}

func (c Config) withDefaults() Config {
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Languages == "" {
		c.Languages = "eng"
	}
	if c.ArtifactCacheDir == "" {
		c.ArtifactCacheDir = "./tmp"
	}
	return c
}

// Engine turns one image into word-level detections. Implementations report
// confidence in 0..1 and pixel geometry when the backend provides it.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, languages string) ([]entity.Detection, error)
}
