package imaging

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	"golang.org/x/image/draw"
)

// MaxDimension is the largest width or height fed to OCR. Larger inputs are
// downscaled; receipt photos straight off a phone are routinely 4000px+.
const MaxDimension = 2400

// Decode reads a PNG or JPEG image.
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	_ = format
	return img, nil
}

// DecodeFile reads a PNG or JPEG image from disk.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Decode(f)
}

// Grayscale converts any image to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}

// Normalize grayscales the input and caps its longest side at MaxDimension.
func Normalize(img image.Image) *image.Gray {
	gray := Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxDimension && h <= MaxDimension {
		return gray
	}

	scale := float64(MaxDimension) / float64(w)
	if h > w {
		scale = float64(MaxDimension) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)

	dst := image.NewGray(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), gray, b, draw.Over, nil)
	return dst
}
