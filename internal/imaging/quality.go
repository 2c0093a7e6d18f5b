package imaging

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes how OCR-friendly an image is. Score feeds the overall
// extraction confidence with a small weight.
type Stats struct {
	Sharpness  float64 `json:"sharpness"`  // variance of Laplacian / 100, capped at 1
	Contrast   float64 `json:"contrast"`   // stddev of intensity / 50, capped at 1
	Brightness float64 `json:"brightness"` // mean intensity, 0..255
	Score      float64 `json:"score"`      // mean of sharpness and contrast
}

// maxQualitySamples bounds the pixel sample used for the statistics.
const maxQualitySamples = 1 << 20

// Assess computes quality statistics on the grayscale rendition of img.
func Assess(img image.Image) Stats {
	gray := Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return Stats{}
	}

	step := 1
	for (w/step)*(h/step) > maxQualitySamples {
		step++
	}

	intensities := make([]float64, 0, (w/step+1)*(h/step+1))
	laplacian := make([]float64, 0, cap(intensities))
	for y := 0; y < h; y += step {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x += step {
			v := float64(row[x])
			intensities = append(intensities, v)
			if x == 0 || x == w-1 || y == 0 || y == h-1 {
				continue
			}
			center := float64(gray.Pix[y*gray.Stride+x])
			lap := 4*center -
				float64(gray.Pix[y*gray.Stride+x-1]) -
				float64(gray.Pix[y*gray.Stride+x+1]) -
				float64(gray.Pix[(y-1)*gray.Stride+x]) -
				float64(gray.Pix[(y+1)*gray.Stride+x])
			laplacian = append(laplacian, lap)
		}
	}

	sharpness := 0.0
	if len(laplacian) > 1 {
		sharpness = clamp01(stat.Variance(laplacian, nil) / 100.0)
	}
	contrast := clamp01(stat.StdDev(intensities, nil) / 50.0)
	brightness := stat.Mean(intensities, nil)

	return Stats{
		Sharpness:  sharpness,
		Contrast:   contrast,
		Brightness: brightness,
		Score:      (sharpness + contrast) / 2,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
