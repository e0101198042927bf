package memhost

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

const (
	defaultViewportWidth  = 640
	defaultViewportHeight = 480
)

// Viewport renders the active document to an image file. The render
// is a flat gradient placeholder; what matters to the bridge is the
// save contract (file written, zero size means on-screen size).
type Viewport struct {
	width  int
	height int
}

// NewViewport creates a viewport with the given on-screen size.
func NewViewport(width, height int) *Viewport {
	if width <= 0 {
		width = defaultViewportWidth
	}
	if height <= 0 {
		height = defaultViewportHeight
	}
	return &Viewport{width: width, height: height}
}

// SaveAsImageFile writes a PNG to filepath. Zero width/height falls
// back to the viewport's on-screen size.
func (v *Viewport) SaveAsImageFile(filepath string, width, height int) error {
	if filepath == "" {
		return fmt.Errorf("filepath cannot be empty")
	}
	if width <= 0 {
		width = v.width
	}
	if height <= 0 {
		height = v.height
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(40 + 120*x/width),
				G: uint8(40 + 120*y/height),
				B: 96,
				A: 255,
			})
		}
	}

	f, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("cannot create image file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode viewport image: %w", err)
	}
	return nil
}
