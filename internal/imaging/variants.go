package imaging

import "image"

// Variant names. Detections carry these so fused candidates can be traced back
// to the preprocessing that produced them.
const (
	VariantBinary   = "binary"
	VariantAdaptive = "adaptive"
	VariantEnhanced = "enhanced"
	VariantDenoised = "denoised"
	VariantOriginal = "original"
)

// Variant is one preprocessed rendition of the source image.
type Variant struct {
	Name  string
	Image *image.Gray
}

// Variants produces the preprocessed renditions OCR runs against. Receipts
// photographed in poor light respond differently to each thresholding
// strategy, so all of them are tried and their detections fused afterwards.
func Variants(img image.Image) []Variant {
	gray := Normalize(img)
	return []Variant{
		{Name: VariantBinary, Image: OtsuThreshold(gray)},
		{Name: VariantAdaptive, Image: AdaptiveThreshold(gray, 15, 2)},
		{Name: VariantEnhanced, Image: Equalize(gray)},
		{Name: VariantDenoised, Image: OtsuThreshold(MedianFilter(gray))},
	}
}

func histogram(gray *image.Gray) [256]int {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride : (y-b.Min.Y)*gray.Stride+b.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist
}

// OtsuThreshold binarizes using the global threshold that maximizes
// between-class variance of the intensity histogram.
func OtsuThreshold(gray *image.Gray) *image.Gray {
	hist := histogram(gray)
	b := gray.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return image.NewGray(b)
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVar float64
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = t
		}
	}

	return applyThreshold(gray, uint8(threshold))
}

func applyThreshold(gray *image.Gray, threshold uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x, v := range src {
			if v > threshold {
				dst[x] = 255
			}
		}
	}
	return out
}

// AdaptiveThreshold binarizes against the local window mean minus bias.
// window must be odd; 15/2 tracks uneven lighting across crumpled paper.
func AdaptiveThreshold(gray *image.Gray, window, bias int) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}

	// integral image with a zero row/column prefix
	integral := make([]int64, (w+1)*(h+1))
	stride := w + 1
	for y := 0; y < h; y++ {
		var rowSum int64
		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x := 0; x < w; x++ {
			rowSum += int64(src[x])
			integral[(y+1)*stride+(x+1)] = integral[y*stride+(x+1)] + rowSum
		}
	}

	half := window / 2
	for y := 0; y < h; y++ {
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		y0 := max(0, y-half)
		y1 := min(h-1, y+half)
		for x := 0; x < w; x++ {
			x0 := max(0, x-half)
			x1 := min(w-1, x+half)
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*stride+(x1+1)] -
				integral[y0*stride+(x1+1)] -
				integral[(y1+1)*stride+x0] +
				integral[y0*stride+x0]
			mean := sum / count
			if int64(gray.Pix[y*gray.Stride+x]) > mean-int64(bias) {
				dst[x] = 255
			}
		}
	}
	return out
}

// Equalize stretches contrast by global histogram equalization.
func Equalize(gray *image.Gray) *image.Gray {
	hist := histogram(gray)
	b := gray.Bounds()
	total := b.Dx() * b.Dy()
	out := image.NewGray(b)
	if total == 0 {
		return out
	}

	// cumulative distribution, mapped back to 0..255
	var lut [256]uint8
	var cum int
	for i, c := range hist {
		cum += c
		lut[i] = uint8((cum*255 + total/2) / total)
	}

	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x, v := range src {
			dst[x] = lut[v]
		}
	}
	return out
}

// MedianFilter applies a 3x3 median, knocking out salt-and-pepper noise
// before thresholding.
func MedianFilter(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}

	var window [9]uint8
	for y := 0; y < h; y++ {
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					xx := x + dx
					if xx < 0 || xx >= w {
						continue
					}
					window[n] = gray.Pix[yy*gray.Stride+xx]
					n++
				}
			}
			dst[x] = medianOf(window[:n])
		}
	}
	return out
}

func medianOf(vals []uint8) uint8 {
	// insertion sort; n <= 9
	for i := 1; i < len(vals); i++ {
		v := vals[i]
		j := i - 1
		for j >= 0 && vals[j] > v {
			vals[j+1] = vals[j]
			j--
		}
		vals[j+1] = v
	}
	return vals[len(vals)/2]
}
