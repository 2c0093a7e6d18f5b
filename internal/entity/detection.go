package entity

// Box is the pixel-space bounding box of a detection.
// The zero value means the engine reported no geometry.
type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the box carries no geometry.
func (b Box) Empty() bool {
	return b.Width == 0 && b.Height == 0
}

// Right returns the x coordinate of the box's right edge.
func (b Box) Right() int {
	return b.Left + b.Width
}

// Bottom returns the y coordinate of the box's bottom edge.
func (b Box) Bottom() int {
	return b.Top + b.Height
}

// Detection is a single text fragment reported by an OCR engine,
// tagged with the preprocessing variant that produced it.
type Detection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0..1
	Variant    string  `json:"variant"`
	Box        Box     `json:"box"`
}
